// Package launcher holds the state machine that sequences target selection,
// argument entry, suggestion fetches and execution.
//
// An Orchestrator is not safe for concurrent use. Every method is called from
// a single control goroutine, which also drains the worker's results and the
// activation sources into it.
package launcher

import (
	"strings"

	"github.com/berrythewa/quicklaunch/internal/ranker"
	"github.com/berrythewa/quicklaunch/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configures an Orchestrator
type Options struct {
	Targets            []types.Target
	Worker             Worker
	LastUsed           LastUsed
	History            History
	Executor           Executor
	SuggestionsEnabled bool
	Logger             *zap.Logger
}

// Orchestrator owns the launch session
type Orchestrator struct {
	targets  []types.Target
	worker   Worker
	lastUsed LastUsed
	history  History
	executor Executor
	logger   *zap.Logger

	state        State
	activationID string
	targetText   string
	argument     string

	current    types.Target
	hasCurrent bool

	// nextGen only grows; activeGen is 0 when nothing is live
	nextGen   uint64
	activeGen uint64

	suggestionsEnabled bool
	suggestions        []string
	remote             bool

	historyCache   []string
	historyFor     string
	loadingHistory bool

	// shownFor names the target the visible suggestions and live query belong to
	shownFor string

	done       chan struct{}
	exitCode   int
	terminated bool
}

// New creates an orchestrator in the Idle state
func New(opts Options) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Orchestrator{
		targets:            opts.Targets,
		worker:             opts.Worker,
		lastUsed:           opts.LastUsed,
		history:            opts.History,
		executor:           opts.Executor,
		logger:             opts.Logger,
		suggestionsEnabled: opts.SuggestionsEnabled,
		state:              StateIdle,
		done:               make(chan struct{}),
	}
}

// Activate resets the session for a new activation. An empty target restores
// the last executed target and argument.
func (o *Orchestrator) Activate(target string) {
	if o.terminated {
		return
	}
	o.activationID = uuid.NewString()
	target = strings.TrimSpace(target)

	o.cancelQuery()
	o.argument = ""
	o.clearSuggestions()
	o.shownFor = ""

	if target == "" {
		lastTarget, lastArgument, err := o.lastUsed.LoadLast()
		if err != nil {
			o.logger.Warn("Failed to load last used target",
				zap.String("activation", o.activationID),
				zap.Error(err))
		}
		o.targetText = lastTarget
		o.match()
		if o.hasCurrent {
			o.argument = lastArgument
			o.state = StateArgumentEntry
			o.presentHistory()
		} else {
			o.state = StateIdle
		}
	} else {
		o.targetText = target
		o.match()
		if o.hasCurrent {
			o.state = StateArgumentEntry
			o.presentHistory()
		} else {
			o.state = StateTargetPending
		}
	}

	o.logger.Info("Activated",
		zap.String("activation", o.activationID),
		zap.String("target", o.targetText),
		zap.Stringer("state", o.state))
}

// SetTargetText updates the target field. It never aborts a running fetch;
// when another target is matched the fetch's result is simply no longer shown.
func (o *Orchestrator) SetTargetText(text string) {
	if o.terminated {
		return
	}
	o.targetText = text
	o.revalidate()
}

// EditArgument updates the argument field, cancelling the live query and
// starting a new one when the target supports remote suggestions.
func (o *Orchestrator) EditArgument(text string) {
	if o.terminated || o.loadingHistory {
		return
	}
	o.argument = text
	o.cancelQuery()

	if !o.hasCurrent {
		return
	}
	if !o.ensureHistory() {
		return
	}
	o.refresh()
}

// SelectSuggestion puts item into the argument field without starting a query
func (o *Orchestrator) SelectSuggestion(item string) {
	if o.terminated || !o.hasCurrent {
		return
	}
	o.cancelQuery()
	o.argument = item
}

// ToggleSuggestionSource switches between remote and history-only suggestions
func (o *Orchestrator) ToggleSuggestionSource() {
	if o.terminated {
		return
	}
	o.suggestionsEnabled = !o.suggestionsEnabled
	o.cancelQuery()

	o.logger.Debug("Toggled suggestion source",
		zap.String("activation", o.activationID),
		zap.Bool("remote", o.suggestionsEnabled))

	if !o.hasCurrent || !o.ensureHistory() {
		return
	}
	o.refresh()
}

// OnSuggestionResult presents r when it belongs to the live query.
// It reports whether the visible suggestions changed.
func (o *Orchestrator) OnSuggestionResult(r types.SuggestionResult) bool {
	if o.terminated || r.Generation == 0 || r.Generation != o.activeGen || !o.suggestionsEnabled || !o.hasCurrent {
		o.logger.Debug("Discarding suggestion result",
			zap.Uint64("generation", r.Generation),
			zap.Uint64("active", o.activeGen))
		return false
	}

	history := ranker.MatchPrefix(o.historyCache, o.argument)
	o.suggestions = ranker.Merge(r.Items, history)
	o.remote = len(r.Items) > 0
	if o.state == StateQuerying {
		o.state = StateArgumentEntry
	}

	o.logger.Debug("Presenting suggestions",
		zap.String("activation", o.activationID),
		zap.Uint64("generation", r.Generation),
		zap.Int("count", len(o.suggestions)))
	return true
}

// Execute records history, launches the command for the current target and
// terminates. Without a valid target it does nothing.
func (o *Orchestrator) Execute() {
	if o.terminated {
		return
	}
	o.cancelQuery()
	if !o.hasCurrent {
		o.logger.Debug("Execute ignored without a valid target", zap.String("target", o.targetText))
		return
	}

	o.state = StateExecuting
	target := o.current
	argument := strings.TrimSpace(o.argument)

	if err := o.history.RecordUse(target.Name, argument); err != nil {
		o.logger.Warn("Failed to record history", zap.String("target", target.Name), zap.Error(err))
	}

	cmd := BuildCommand(target, argument)
	var err error
	if cmd.URL {
		err = o.executor.OpenURL(cmd.Line)
	} else {
		err = o.executor.SpawnDetached(cmd.Line)
	}
	if err != nil {
		o.logger.Error("Launch failed",
			zap.String("activation", o.activationID),
			zap.String("command", cmd.Line),
			zap.Error(err))
	} else {
		o.logger.Info("Launched",
			zap.String("activation", o.activationID),
			zap.String("command", cmd.Line),
			zap.Bool("url", cmd.URL))
	}

	if err := o.lastUsed.SaveLast(strings.TrimSpace(o.targetText), argument); err != nil {
		o.logger.Warn("Failed to save last used target", zap.Error(err))
	}

	o.terminate(0)
}

// Cancel terminates without executing or persisting anything
func (o *Orchestrator) Cancel() {
	if o.terminated {
		return
	}
	o.cancelQuery()
	o.logger.Info("Cancelled", zap.String("activation", o.activationID))
	o.terminate(0)
}

// SetTargets replaces the configured targets and re-validates the target field
func (o *Orchestrator) SetTargets(targets []types.Target) {
	if o.terminated {
		return
	}
	o.targets = targets
	o.historyFor = ""
	o.revalidate()
	o.logger.Info("Targets reloaded", zap.Int("count", len(targets)))
}

// Apply dispatches a frontend input
func (o *Orchestrator) Apply(in Input) {
	switch in.Kind {
	case InputTarget:
		o.SetTargetText(in.Text)
	case InputArgument:
		o.EditArgument(in.Text)
	case InputSelect:
		o.SelectSuggestion(in.Text)
	case InputToggle:
		o.ToggleSuggestionSource()
	case InputExecute:
		o.Execute()
	case InputCancel:
		o.Cancel()
	}
}

// Snapshot returns a copy of the session for rendering
func (o *Orchestrator) Snapshot() View {
	return View{
		ActivationID:       o.activationID,
		State:              o.state,
		TargetText:         o.targetText,
		Argument:           o.argument,
		ArgumentEnabled:    o.hasCurrent,
		Suggestions:        append([]string(nil), o.suggestions...),
		RemoteSuggestions:  o.remote,
		SuggestionsEnabled: o.suggestionsEnabled,
		Generation:         o.activeGen,
	}
}

func (o *Orchestrator) State() State { return o.state }

// Done is closed once the orchestrator has terminated
func (o *Orchestrator) Done() <-chan struct{} { return o.done }

func (o *Orchestrator) ExitCode() int { return o.exitCode }

// Targets returns the configured targets
func (o *Orchestrator) Targets() []types.Target {
	return append([]types.Target(nil), o.targets...)
}

// TargetNames returns the configured target names in order
func (o *Orchestrator) TargetNames() []string {
	names := make([]string, len(o.targets))
	for i, t := range o.targets {
		names[i] = t.Name
	}
	return names
}

// match resolves targetText against the configured targets
func (o *Orchestrator) match() {
	o.current, o.hasCurrent = types.FindTarget(o.targets, o.targetText)
}

func (o *Orchestrator) revalidate() {
	o.match()
	switch {
	case strings.TrimSpace(o.targetText) == "":
		o.state = StateIdle
		o.clearSuggestions()
	case !o.hasCurrent:
		o.state = StateTargetPending
		o.clearSuggestions()
	case !strings.EqualFold(o.shownFor, o.current.Name):
		o.activeGen = 0
		o.state = StateArgumentEntry
		o.presentHistory()
	case o.state != StateQuerying:
		o.state = StateArgumentEntry
	}
}

// ensureHistory loads the current target's history once per target change.
// It returns false for a re-entrant call made while the load is running.
func (o *Orchestrator) ensureHistory() bool {
	if o.historyFor != "" && strings.EqualFold(o.historyFor, o.current.Name) {
		return true
	}
	if o.loadingHistory {
		return false
	}
	o.loadingHistory = true
	defer func() { o.loadingHistory = false }()

	o.historyCache = o.history.Load(o.current.Name)
	o.historyFor = o.current.Name
	return true
}

// refresh starts a remote query when possible, otherwise shows history
func (o *Orchestrator) refresh() {
	arg := strings.TrimSpace(o.argument)
	if o.current.Query != "" && arg != "" && o.suggestionsEnabled {
		o.issueQuery(arg)
		return
	}
	o.presentHistory()
	o.state = StateArgumentEntry
}

func (o *Orchestrator) issueQuery(arg string) {
	o.nextGen++
	o.activeGen = o.nextGen
	o.state = StateQuerying
	o.shownFor = o.current.Name

	o.worker.Submit(types.QueryRequest{
		Query:      o.current.Query,
		Argument:   arg,
		Format:     o.current.Format,
		Generation: o.activeGen,
	})

	o.logger.Debug("Issued suggestion query",
		zap.String("activation", o.activationID),
		zap.String("target", o.current.Name),
		zap.Uint64("generation", o.activeGen))
}

// cancelQuery aborts the live query, if any
func (o *Orchestrator) cancelQuery() {
	if o.activeGen != 0 {
		o.worker.Abort()
		o.activeGen = 0
	}
	if o.state == StateQuerying {
		o.state = StateArgumentEntry
	}
}

func (o *Orchestrator) presentHistory() {
	if !o.ensureHistory() {
		return
	}
	o.suggestions = ranker.Merge(nil, ranker.MatchPrefix(o.historyCache, o.argument))
	o.remote = false
	o.shownFor = o.current.Name
}

func (o *Orchestrator) clearSuggestions() {
	o.suggestions = nil
	o.remote = false
}

func (o *Orchestrator) terminate(code int) {
	o.state = StateTerminated
	o.exitCode = code
	o.terminated = true
	close(o.done)
}
