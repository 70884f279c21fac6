// Package diagnostics collects the per-run record of skipped rows and
// best-effort warnings. Components receive a Recorder instead of reaching for
// a process-wide logger.
package diagnostics

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Level string

const (
	LevelWarn    Level = "warn"
	LevelDiscard Level = "discard"
)

type Recorder interface {
	// Discard reports that the raw row at index was dropped for reason.
	Discard(index int, reason error)
	// Warn reports a recoverable problem in component.
	Warn(component, message string, fields map[string]interface{})
}

type Entry struct {
	Time      time.Time
	Level     Level
	Component string
	Row       int
	Message   string
	Err       error
	Fields    map[string]interface{}
}

// Collector keeps every entry of one run and mirrors it to a zerolog logger.
// It is not safe for concurrent use.
type Collector struct {
	runID   string
	log     zerolog.Logger
	entries []Entry
	now     func() time.Time
}

func NewCollector(log zerolog.Logger) *Collector {
	runID := uuid.NewString()
	return &Collector{
		runID: runID,
		log:   log.With().Str("run_id", runID).Logger(),
		now:   time.Now,
	}
}

func (c *Collector) RunID() string {
	return c.runID
}

// Logger returns the collector's logger, tagged with the run id.
func (c *Collector) Logger() zerolog.Logger {
	return c.log
}

func (c *Collector) Discard(index int, reason error) {
	c.entries = append(c.entries, Entry{
		Time:      c.now(),
		Level:     LevelDiscard,
		Component: "normalizer",
		Row:       index,
		Message:   "row discarded",
		Err:       reason,
	})

	c.log.Warn().Int("row", index).Err(reason).Msg("row discarded")
}

func (c *Collector) Warn(component, message string, fields map[string]interface{}) {
	c.entries = append(c.entries, Entry{
		Time:      c.now(),
		Level:     LevelWarn,
		Component: component,
		Row:       -1,
		Message:   message,
		Fields:    fields,
	})

	event := c.log.Warn().Str("component", component)
	if len(fields) > 0 {
		event = event.Fields(fields)
	}
	event.Msg(message)
}

// Entries returns a copy of everything recorded so far.
func (c *Collector) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Collector) Discards() []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.Level == LevelDiscard {
			out = append(out, e)
		}
	}
	return out
}

func (c *Collector) Warnings() []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.Level == LevelWarn {
			out = append(out, e)
		}
	}
	return out
}

type nop struct{}

func (nop) Discard(int, error)                          {}
func (nop) Warn(string, string, map[string]interface{}) {}

// Nop drops everything.
var Nop Recorder = nop{}
