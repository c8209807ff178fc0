package ipc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/berrythewa/quicklaunch/internal/types"
)

// MaxLineLength bounds one activation line, newline excluded
const MaxLineLength = 4096

var (
	ErrLineTooLong = errors.New("activation line too long")
	ErrIncomplete  = errors.New("activation line not terminated")
	ErrInvalidUTF8 = errors.New("activation line is not valid UTF-8")
)

// Encode renders msg as a single newline-terminated line.
// Line breaks inside the target are flattened to spaces.
func Encode(msg types.ActivationMessage) []byte {
	target := strings.NewReplacer("\r", " ", "\n", " ").Replace(msg.Target)
	return []byte(target + "\n")
}

// NewReader returns a reader sized so ReadMessage can detect oversize lines
func NewReader(r io.Reader) *bufio.Reader {
	return bufio.NewReaderSize(r, MaxLineLength+2)
}

// ReadMessage reads exactly one activation line from r
func ReadMessage(r *bufio.Reader) (types.ActivationMessage, error) {
	line, err := r.ReadSlice('\n')
	switch {
	case errors.Is(err, bufio.ErrBufferFull):
		return types.ActivationMessage{}, ErrLineTooLong
	case errors.Is(err, io.EOF):
		return types.ActivationMessage{}, ErrIncomplete
	case err != nil:
		return types.ActivationMessage{}, fmt.Errorf("failed to read activation: %w", err)
	}

	line = line[:len(line)-1]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	if len(line) > MaxLineLength {
		return types.ActivationMessage{}, ErrLineTooLong
	}
	if !utf8.Valid(line) {
		return types.ActivationMessage{}, ErrInvalidUTF8
	}
	return types.ActivationMessage{Target: strings.TrimSpace(string(line))}, nil
}
