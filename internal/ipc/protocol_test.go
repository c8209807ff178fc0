package ipc

import (
	"strings"
	"testing"

	"github.com/berrythewa/quicklaunch/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "target", input: "g\n", want: "g"},
		{name: "empty", input: "\n", want: ""},
		{name: "crlf and spaces", input: "  wiki \r\n", want: "wiki"},
		{name: "only first line", input: "a\nb\n", want: "a"},
		{name: "unicode", input: "søk\n", want: "søk"},
		{name: "max length", input: strings.Repeat("x", MaxLineLength) + "\n", want: strings.Repeat("x", MaxLineLength)},
		{name: "no newline", input: "g", wantErr: ErrIncomplete},
		{name: "nothing", input: "", wantErr: ErrIncomplete},
		{name: "invalid utf8", input: "\xc3\x28\n", wantErr: ErrInvalidUTF8},
		{name: "one byte too long", input: strings.Repeat("x", MaxLineLength+1) + "\n", wantErr: ErrLineTooLong},
		{name: "far too long", input: strings.Repeat("x", 3*MaxLineLength) + "\n", wantErr: ErrLineTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ReadMessage(NewReader(strings.NewReader(tt.input)))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, msg.Target)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, target := range []string{"", "g", "multi\nline\rtarget", "ünïcødé"} {
		data := Encode(types.ActivationMessage{Target: target})
		assert.Equal(t, 1, strings.Count(string(data), "\n"))

		msg, err := ReadMessage(NewReader(strings.NewReader(string(data))))
		require.NoError(t, err)
		assert.Equal(t, strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(target)), msg.Target)
	}
}
