package launcher

import (
	"net/url"
	"strings"

	"github.com/berrythewa/quicklaunch/internal/types"
)

// Command is a fully expanded launch command
type Command struct {
	Line string
	URL  bool
}

// BuildCommand expands the target's command with argument.
//
// The base is the target's Command, else its Query when that is an HTTP(S)
// URL, else the target name. HTTP(S) bases receive the query-escaped
// argument; anything else receives the trimmed argument, substituted for {}
// or appended after a single space.
func BuildCommand(t types.Target, argument string) Command {
	base := t.Command
	if base == "" {
		if isHTTP(t.Query) {
			base = t.Query
		} else {
			base = t.Name
		}
	}

	arg := strings.TrimSpace(argument)
	if isHTTP(base) {
		return Command{Line: types.Expand(base, url.QueryEscape(arg)), URL: true}
	}
	if strings.Contains(base, types.Placeholder) {
		return Command{Line: strings.ReplaceAll(base, types.Placeholder, arg)}
	}
	if arg == "" {
		return Command{Line: base}
	}
	return Command{Line: base + " " + arg}
}

func isHTTP(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
