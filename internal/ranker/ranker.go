// Package ranker merges remote suggestions with argument history into the
// list shown under the argument field.
package ranker

import "strings"

const (
	// RemoteLimit bounds the list when remote suggestions are present.
	// Remote engines already rank by relevance, so more of them are shown.
	RemoteLimit = 21
	// HistoryLimit bounds a history-only list
	HistoryLimit = 7
)

// Merge returns remote followed by the history entries not already present in
// remote, bounded to RemoteLimit. Without remote items it returns history bounded
// to HistoryLimit. Order within each source is preserved and comparison ignores
// case.
func Merge(remote, history []string) []string {
	if len(remote) == 0 {
		return bounded(dedup(nil, history, nil), HistoryLimit)
	}

	seen := make(map[string]bool, len(remote)+len(history))
	out := dedup(nil, remote, seen)
	out = dedup(out, history, seen)
	return bounded(out, RemoteLimit)
}

// MatchPrefix returns the items starting with prefix, ignoring case.
// An empty prefix matches everything.
func MatchPrefix(items []string, prefix string) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if strings.HasPrefix(strings.ToLower(item), prefix) {
			out = append(out, item)
		}
	}
	return out
}

func dedup(out, items []string, seen map[string]bool) []string {
	if seen == nil {
		seen = make(map[string]bool, len(items))
	}
	for _, item := range items {
		k := strings.ToLower(item)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, item)
	}
	return out
}

func bounded(items []string, limit int) []string {
	if items == nil {
		items = []string{}
	}
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
