package artifact_source

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"google.golang.org/api/option"
)

// GcpConnection holds the settings for the GCS client used by the replay command
type GcpConnection struct {
	// path to, or contents of, a service account credentials file
	Credentials  *string
	QuotaProject *string
}

func (c *GcpConnection) GetClientOptions() ([]option.ClientOption, error) {
	var opts []option.ClientOption

	if c.Credentials != nil {
		contents, err := pathOrContents(*c.Credentials)
		if err != nil {
			return opts, fmt.Errorf("error reading credentials file: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON([]byte(contents)))
	}

	qp := os.Getenv("GOOGLE_CLOUD_QUOTA_PROJECT")
	if c.QuotaProject != nil {
		qp = *c.QuotaProject
	}
	if qp != "" {
		opts = append(opts, option.WithQuotaProject(qp))
	}
	return opts, nil
}

// pathOrContents returns the contents of the file at in, or in itself if it is not a path
func pathOrContents(in string) (string, error) {
	if len(in) == 0 {
		return "", nil
	}

	filePath, err := homedir.Expand(in)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(filePath); err == nil {
		contents, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		return string(contents), nil
	}

	if len(filePath) > 1 && (filePath[0] == '/' || filePath[0] == '\\') {
		return "", fmt.Errorf("%s: no such file or dir", filePath)
	}

	return in, nil
}
