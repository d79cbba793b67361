package types

import (
	"log/slog"
	"strings"
	"time"
)

type Timing struct {
	Start time.Time
	End   time.Time
}

func (t *Timing) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

// TimingCollection records the duration of each pipeline step, in the order the steps ran
type TimingCollection struct {
	names   []string
	timings map[string]Timing
}

func NewTimingCollection() *TimingCollection {
	return &TimingCollection{timings: make(map[string]Timing)}
}

// Time runs f and records its duration under name
func (c *TimingCollection) Time(name string, f func() error) error {
	start := time.Now()
	err := f()
	if _, ok := c.timings[name]; !ok {
		c.names = append(c.names, name)
	}
	c.timings[name] = Timing{Start: start, End: time.Now()}
	return err
}

func (c *TimingCollection) Get(name string) (Timing, bool) {
	t, ok := c.timings[name]
	return t, ok
}

// LogValue implements slog.LogValuer
func (c *TimingCollection) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(c.names))
	for _, n := range c.names {
		t := c.timings[n]
		attrs = append(attrs, slog.String(n, t.Duration().String()))
	}
	return slog.GroupValue(attrs...)
}

func (c *TimingCollection) String() string {
	var sb strings.Builder
	sb.WriteString("Timing:\n")
	// get max label length
	maxLabelLen := 0
	for _, k := range c.names {
		if len(k) > maxLabelLen {
			maxLabelLen = len(k)
		}
	}

	for _, k := range c.names {
		sb.WriteString(k)
		sb.WriteString(":")
		// pad label to max length
		for i := len(k); i < maxLabelLen; i++ {
			sb.WriteString(" ")
		}
		t := c.timings[k]
		sb.WriteString(t.Duration().String())
		sb.WriteString("\n")
	}
	return sb.String()
}
