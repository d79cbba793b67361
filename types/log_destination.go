package types

import "fmt"

// LogDestination is a log stream within a log group
type LogDestination struct {
	Group  string
	Stream string
}

func (d LogDestination) String() string {
	return fmt.Sprintf("%s/%s", d.Group, d.Stream)
}
