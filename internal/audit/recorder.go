package audit

import (
	"context"
	"time"

	"github.com/nerrad567/gray-logic-interaction/internal/animation"
	"github.com/nerrad567/gray-logic-interaction/internal/control"
)

// recordTimeout bounds one audit write.
const recordTimeout = 2 * time.Second

// Logger is the logging interface used by Recorder.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// Executor runs door commands.
type Executor interface {
	Execute(key string, req control.Request) (animation.Session, error)
}

// FromCommand builds the entry for one executed command. The door is the
// resolved path when the command succeeded and the caller's key otherwise.
func FromCommand(source, subject, key string, req control.Request, snap animation.Session, err error) Entry {
	e := Entry{
		Action:  string(req.Action),
		Door:    key,
		Subject: subject,
		Source:  source,
		Success: err == nil,
	}
	if snap.Door != "" {
		e.Door = snap.Door
	}
	if err != nil {
		e.Error = err.Error()
	}
	if params := req.Params.Fields(); len(params) > 0 {
		e.Details = map[string]any{"params": params}
	}
	if snap.ID != "" {
		if e.Details == nil {
			e.Details = map[string]any{}
		}
		e.Details["session"] = snap.ID
	}
	return e
}

// Recorder wraps an Executor and records every command it runs.
// Audit write failures are logged and never fail the command.
type Recorder struct {
	next   Executor
	repo   Repository
	source string
	logger Logger
}

// NewRecorder creates a recorder attributing commands to source.
func NewRecorder(next Executor, repo Repository, source string) *Recorder {
	return &Recorder{next: next, repo: repo, source: source, logger: noopLogger{}}
}

// SetLogger sets the logger for the recorder.
func (r *Recorder) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	r.logger = logger
}

// Execute runs the command and records the outcome.
func (r *Recorder) Execute(key string, req control.Request) (animation.Session, error) {
	snap, err := r.next.Execute(key, req)

	e := FromCommand(r.source, "", key, req, snap, err)
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if recErr := r.repo.Record(ctx, &e); recErr != nil {
		r.logger.Warn("recording door command failed", "door", e.Door, "action", e.Action, "error", recErr)
	}
	return snap, err
}
