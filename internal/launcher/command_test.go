package launcher

import (
	"testing"

	"github.com/berrythewa/quicklaunch/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestBuildCommand(t *testing.T) {
	tests := []struct {
		name     string
		target   types.Target
		argument string
		want     Command
	}{
		{
			name:     "query template used when command is empty",
			target:   types.Target{Name: "g", Query: "https://example.com/search?q={}"},
			argument: "cats",
			want:     Command{Line: "https://example.com/search?q=cats", URL: true},
		},
		{
			name:     "url argument is escaped",
			target:   types.Target{Name: "g", Command: "https://example.com/search?q="},
			argument: "  cats & dogs/ü ",
			want:     Command{Line: "https://example.com/search?q=cats+%26+dogs%2F%C3%BC", URL: true},
		},
		{
			name:     "url placeholder in the middle",
			target:   types.Target{Name: "w", Command: "https://en.wikipedia.org/w/index.php?search={}&go=Go"},
			argument: "go lang",
			want:     Command{Line: "https://en.wikipedia.org/w/index.php?search=go+lang&go=Go", URL: true},
		},
		{
			name:     "url with empty argument",
			target:   types.Target{Name: "g", Command: "HTTPS://example.com/?q="},
			argument: "",
			want:     Command{Line: "HTTPS://example.com/?q=", URL: true},
		},
		{
			name:     "shell command appends argument",
			target:   types.Target{Name: "man", Command: "x-terminal-emulator -e man"},
			argument: " ls ",
			want:     Command{Line: "x-terminal-emulator -e man ls"},
		},
		{
			name:     "shell command without argument has no suffix",
			target:   types.Target{Name: "top", Command: "xterm -e top"},
			argument: "   ",
			want:     Command{Line: "xterm -e top"},
		},
		{
			name:     "shell placeholder",
			target:   types.Target{Name: "ssh", Command: "xterm -e ssh {} -t tmux"},
			argument: "host",
			want:     Command{Line: "xterm -e ssh host -t tmux"},
		},
		{
			name:     "target name when nothing else is configured",
			target:   types.Target{Name: "firefox"},
			argument: "--private-window",
			want:     Command{Line: "firefox --private-window"},
		},
		{
			name:     "non url query is not a command",
			target:   types.Target{Name: "notes", Query: "file:///tmp/x?q={}"},
			argument: "todo",
			want:     Command{Line: "notes todo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildCommand(tt.target, tt.argument))
		})
	}
}
