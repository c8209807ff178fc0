package types

import (
	"strings"
)

// SuggestFormat identifies how a remote suggestion response is encoded
type SuggestFormat string

const (
	FormatAuto       SuggestFormat = ""
	FormatOpenSearch SuggestFormat = "opensearch"
	FormatXML        SuggestFormat = "xml"
	FormatLines      SuggestFormat = "lines"
)

// Valid reports whether f is one of the known formats
func (f SuggestFormat) Valid() bool {
	switch f {
	case FormatAuto, FormatOpenSearch, FormatXML, FormatLines:
		return true
	}
	return false
}

// Target is a named launch configuration
type Target struct {
	Name    string        `json:"name" yaml:"name"`
	Command string        `json:"command,omitempty" yaml:"command,omitempty"`
	Query   string        `json:"query,omitempty" yaml:"query,omitempty"`
	Format  SuggestFormat `json:"format,omitempty" yaml:"format,omitempty"`
}

// Matches compares the target name against name, ignoring case
func (t Target) Matches(name string) bool {
	return strings.EqualFold(t.Name, name)
}

// FindTarget returns the target whose name matches name exactly, ignoring case.
func FindTarget(targets []Target, name string) (Target, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Target{}, false
	}
	for _, t := range targets {
		if t.Matches(name) {
			return t, true
		}
	}
	return Target{}, false
}

// QueryRequest asks the suggestion worker for completions of Argument.
// Generation is assigned by the orchestrator and echoed in the result.
type QueryRequest struct {
	Query      string
	Argument   string
	Format     SuggestFormat
	Generation uint64
}

// SuggestionResult carries the suggestions produced for one QueryRequest
type SuggestionResult struct {
	Items      []string
	Generation uint64
}

// ActivationMessage is sent by a secondary launch to the primary instance
type ActivationMessage struct {
	Target string
}

// Placeholder marks where the argument goes in a command or query template
const Placeholder = "{}"

// Expand substitutes value for every Placeholder in template, or appends value
// when the template has none.
func Expand(template, value string) string {
	if strings.Contains(template, Placeholder) {
		return strings.ReplaceAll(template, Placeholder, value)
	}
	return template + value
}
