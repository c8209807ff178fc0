package launcher

import (
	"fmt"

	"github.com/berrythewa/quicklaunch/internal/types"
)

// State is the orchestrator's position in the launch sequence
type State int

const (
	StateIdle State = iota
	StateTargetPending
	StateArgumentEntry
	StateQuerying
	StateExecuting
	StateTerminated
)

var stateNames = map[State]string{
	StateIdle:          "idle",
	StateTargetPending: "target-pending",
	StateArgumentEntry: "argument-entry",
	StateQuerying:      "querying",
	StateExecuting:     "executing",
	StateTerminated:    "terminated",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Worker runs suggestion fetches off the control goroutine
type Worker interface {
	Submit(req types.QueryRequest)
	Abort()
}

// LastUsed persists the most recently executed target and argument
type LastUsed interface {
	LoadLast() (target, argument string, err error)
	SaveLast(target, argument string) error
}

// History provides per-target argument history
type History interface {
	Load(target string) []string
	RecordUse(target, argument string) error
}

// Executor launches the final command
type Executor interface {
	OpenURL(url string) error
	SpawnDetached(command string) error
}

// View is a read-only copy of the session for frontends
type View struct {
	ActivationID       string
	State              State
	TargetText         string
	Argument           string
	ArgumentEnabled    bool
	Suggestions        []string
	RemoteSuggestions  bool
	SuggestionsEnabled bool
	Generation         uint64
}
