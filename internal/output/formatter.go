// Package output formats the results of a Transfer for the terminal. It is
// extendable and for now provides two formats: human-readable text and JSON.
package output

import (
	"fmt"
	"strings"

	"dte/internal/engine"
)

// Format is an enum type representing the available output formats.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
)

// Reporter formats a completed (or failed) Transfer for the user.
type Reporter interface {
	// Preview renders the rows captured by Options.Preview, when the
	// engine returned a preview instead of performing a write.
	Preview(engine.Stats) (string, error)
	// Result renders the final Stats of a Transfer, or the error that
	// stopped it.
	Result(engine.Stats, error) (string, error)
}

// NewReporter creates a new Reporter based on the given name. If no format
// is specified, defaults to the human-readable format.
func NewReporter(name string) (Reporter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatHuman:
		return humanReporter{}, nil
	case FormatJSON:
		return jsonReporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s; use 'human' or 'json'", name)
	}
}
