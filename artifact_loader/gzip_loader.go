package artifact_loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
)

var (
	ErrInvalidGzip     = errors.New("invalid gzip data")
	ErrInvalidEncoding = errors.New("content is not valid UTF-8")
)

// GzipLoader is a Loader that inflates a gzip object and returns all the content as text
type GzipLoader struct {
}

func NewGzipLoader() Loader {
	return &GzipLoader{}
}

func (g GzipLoader) Identifier() string {
	return GzipLoaderIdentifier
}

// Load implements Loader
// The whole stream is inflated (including concatenated gzip members) before the text is returned;
// a truncated or corrupt stream fails rather than returning the content read so far
func (g GzipLoader) Load(data []byte) (string, error) {
	gzReader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: error creating gzip reader, %w", ErrInvalidGzip, err)
	}
	defer gzReader.Close()

	content, err := io.ReadAll(gzReader)
	if err != nil {
		return "", fmt.Errorf("%w: error reading gzip content, %w", ErrInvalidGzip, err)
	}

	if !utf8.Valid(content) {
		return "", ErrInvalidEncoding
	}
	return string(content), nil
}
