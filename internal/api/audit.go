package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/gray-logic-interaction/internal/animation"
	"github.com/nerrad567/gray-logic-interaction/internal/audit"
	"github.com/nerrad567/gray-logic-interaction/internal/control"
)

// auditTimeout bounds one audit write made on the request path.
const auditTimeout = 2 * time.Second

// recordCommand writes the audit entry for a command issued over HTTP.
// Failures are logged and never change the response.
func (s *Server) recordCommand(r *http.Request, key string, req control.Request, snap animation.Session, cmdErr error) {
	if s.audit == nil {
		return
	}
	subject, _ := r.Context().Value(ctxKeySubject).(string) //nolint:errcheck // empty when auth is disabled
	e := audit.FromCommand(audit.SourceAPI, subject, key, req, snap, cmdErr)
	if id := requestIDFrom(r.Context()); id != "" {
		if e.Details == nil {
			e.Details = map[string]any{}
		}
		e.Details["request_id"] = id
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), auditTimeout)
	defer cancel()
	if err := s.audit.Record(ctx, &e); err != nil {
		s.logger.Warn("recording door command failed", "door", e.Door, "action", e.Action, "error", err)
	}
}

// handleListAudit returns audited door commands, newest first.
//
// Query parameters: door (path or slug), action, source, limit, offset.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeUnavailable(w, "audit store not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action: q.Get("action"),
		Source: q.Get("source"),
	}
	if key := q.Get("door"); key != "" {
		filter.Door = key
		if g, err := s.inventory.Find(key); err == nil {
			filter.Door = g.Path
		}
	}

	var err error
	if filter.Limit, err = parseOptionalInt(q.Get("limit")); err != nil {
		writeBadRequest(w, "limit must be a non-negative integer")
		return
	}
	if filter.Offset, err = parseOptionalInt(q.Get("offset")); err != nil {
		writeBadRequest(w, "offset must be a non-negative integer")
		return
	}

	res, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing audit log failed", "error", err)
		writeInternalError(w, "failed to list audit log")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func parseOptionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
