package suggest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/berrythewa/quicklaunch/internal/types"
)

// Parse decodes a UTF-8 suggestion response. An empty format is resolved with
// Sniff.
func Parse(format types.SuggestFormat, data []byte) ([]string, error) {
	if format == types.FormatAuto {
		format = Sniff(data)
	}
	switch format {
	case types.FormatOpenSearch:
		return parseOpenSearch(data)
	case types.FormatXML:
		return parseXML(data)
	case types.FormatLines:
		return parseLines(data), nil
	default:
		return nil, fmt.Errorf("unknown suggestion format %q", format)
	}
}

// Sniff guesses the response format from its first non-space byte
func Sniff(data []byte) types.SuggestFormat {
	data = bytes.TrimLeft(data, " \t\r\n\ufeff")
	switch {
	case bytes.HasPrefix(data, []byte("[")):
		return types.FormatOpenSearch
	case bytes.HasPrefix(data, []byte("<")):
		return types.FormatXML
	default:
		return types.FormatLines
	}
}

// parseOpenSearch reads ["query", ["s1", "s2"], ...]
func parseOpenSearch(data []byte) ([]string, error) {
	var doc []json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid opensearch response: %w", err)
	}
	if len(doc) < 2 {
		return nil, fmt.Errorf("invalid opensearch response: %d elements", len(doc))
	}
	var items []string
	if err := json.Unmarshal(doc[1], &items); err != nil {
		return nil, fmt.Errorf("invalid opensearch suggestions: %w", err)
	}
	return clean(items), nil
}

type toplevel struct {
	Suggestions []struct {
		Suggestion struct {
			Data string `xml:"data,attr"`
		} `xml:"suggestion"`
	} `xml:"CompleteSuggestion"`
}

// parseXML reads <toplevel><CompleteSuggestion><suggestion data="s1"/>...
func parseXML(data []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	// Parse always receives UTF-8, whatever the prolog declares
	dec.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) {
		return in, nil
	}

	var doc toplevel
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid xml response: %w", err)
	}
	items := make([]string, 0, len(doc.Suggestions))
	for _, s := range doc.Suggestions {
		items = append(items, s.Suggestion.Data)
	}
	return clean(items), nil
}

func parseLines(data []byte) []string {
	var items []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		items = append(items, scanner.Text())
	}
	return clean(items)
}

func clean(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
