package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-assist/internal/assist"
	"github.com/nerrad567/gray-logic-assist/internal/history"
)

// WebSocket event channels for assist pipeline broadcasts.
const (
	EventDecision  = "assist.decision"
	EventExecution = "assist.execution"
)

// manualMode labels metrics for action batches submitted directly to
// /assist/execute, where no decision pipeline mode applies.
const manualMode = "manual"

// assistRequest is the request body for POST /assist and /assist/decide.
type assistRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode,omitempty"`
}

// executeRequest is the request body for POST /assist/execute.
type executeRequest struct {
	Actions []assist.Action `json:"actions"`
}

// assistResponse is the response body for POST /assist.
type assistResponse struct {
	InteractionID string                   `json:"interaction_id,omitempty"`
	Decision      *assist.Decision         `json:"decision"`
	Summary       *assist.ExecutionSummary `json:"summary,omitempty"`
}

// handleDecide runs the decision pipeline without executing anything.
func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAssistRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	decision, err := s.engine.Decide(r.Context(), req.Text, assist.Mode(req.Mode))
	if err != nil {
		s.writeAssistError(w, err)
		return
	}
	s.recordDecisionMetric(req.Mode, decision, start)

	s.hub.Broadcast(EventDecision, decision)
	writeJSON(w, http.StatusOK, decision)
}

// handleExecute runs an already-prepared action batch.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	start := time.Now()
	summary, err := s.executor.ExecuteAll(r.Context(), req.Actions)
	if err != nil {
		s.writeAssistError(w, err)
		return
	}
	s.recordExecutionMetric(manualMode, summary, start)

	s.hub.Broadcast(EventExecution, summary)
	writeJSON(w, http.StatusOK, summary)
}

// handleAssist runs the full pipeline: decide, execute, record.
//
// A decision with no actions is a complete, successful turn (a question
// answered, nothing to do); the response carries the decision and no
// summary.
func (s *Server) handleAssist(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeAssistRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	decision, err := s.engine.Decide(r.Context(), req.Text, assist.Mode(req.Mode))
	if err != nil {
		s.writeAssistError(w, err)
		return
	}
	s.recordDecisionMetric(req.Mode, decision, start)
	s.hub.Broadcast(EventDecision, decision)

	resp := assistResponse{Decision: decision}

	if len(decision.Actions) > 0 {
		summary, execErr := s.executor.ExecuteAll(r.Context(), decision.Actions)
		if execErr != nil {
			// Execution failed outright, but the turn still happened:
			// record the decision so the history reflects every request.
			s.recordInteraction(r.Context(), req, decision, nil, start)
			s.writeAssistError(w, execErr)
			return
		}
		s.recordExecutionMetric(req.Mode, summary, start)
		s.hub.Broadcast(EventExecution, summary)
		resp.Summary = summary
	}

	resp.InteractionID = s.recordInteraction(r.Context(), req, decision, resp.Summary, start)

	writeJSON(w, http.StatusOK, resp)
}

// decodeAssistRequest decodes the body and applies the default mode.
// Writes a 400 response and returns false on malformed input.
func (s *Server) decodeAssistRequest(w http.ResponseWriter, r *http.Request) (assistRequest, bool) {
	var req assistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return req, false
	}
	if req.Mode == "" {
		req.Mode = s.assistCfg.DefaultMode
	}
	return req, true
}

// recordInteraction persists the completed turn and prunes old rows.
// Failures are logged; the turn's response is never blocked on the log.
func (s *Server) recordInteraction(ctx context.Context, req assistRequest, decision *assist.Decision, summary *assist.ExecutionSummary, start time.Time) string {
	interaction := &history.Interaction{
		Mode:        req.Mode,
		RequestText: req.Text,
		Message:     decision.Message,
		Actions:     decision.Actions,
		DurationMS:  time.Since(start).Milliseconds(),
	}
	if summary != nil {
		interaction.Results = summary.Results
		interaction.Total = summary.Total
		interaction.Successful = summary.Successful
		interaction.Failed = summary.Failed
		interaction.SuccessRate = summary.SuccessRate
	}

	if err := s.history.Create(ctx, interaction); err != nil {
		s.logger.Error("recording interaction failed", "error", err)
		return ""
	}

	if limit := s.assistCfg.HistoryLimit; limit > 0 {
		if _, err := s.history.Prune(ctx, limit); err != nil {
			s.logger.Warn("pruning interactions failed", "error", err)
		}
	}

	return interaction.ID
}

// recordDecisionMetric writes the decision metric when metrics are enabled.
func (s *Server) recordDecisionMetric(mode string, decision *assist.Decision, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.WriteDecisionMetric(mode, len(decision.Actions), time.Since(start).Milliseconds())
}

// recordExecutionMetric writes the execution metric when metrics are enabled.
func (s *Server) recordExecutionMetric(mode string, summary *assist.ExecutionSummary, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.WriteExecutionMetric(mode, summary.Total, summary.Successful, summary.Failed,
		summary.SuccessRate, time.Since(start).Milliseconds())
}

// writeAssistError maps pipeline sentinel errors onto HTTP responses.
//
// Caller mistakes (empty text, unknown mode, empty batch) are 400s.
// Collaborator failures (platform snapshot, model call, malformed model
// output) are 502s: the request was fine, the upstream was not.
func (s *Server) writeAssistError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, assist.ErrInvalidInput), errors.Is(err, assist.ErrInvalidMode):
		writeBadRequest(w, err.Error())
	case errors.Is(err, assist.ErrContextUnavailable),
		errors.Is(err, assist.ErrModelUnavailable),
		errors.Is(err, assist.ErrInvalidResponse):
		writeUpstreamError(w, err.Error())
	default:
		s.logger.Error("assist pipeline failure", "error", err)
		writeInternalError(w, "internal server error")
	}
}
