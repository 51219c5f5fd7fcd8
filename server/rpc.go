package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/spetersoncode/tablebridge/a2a"
	"github.com/spetersoncode/tablebridge/executor"
	"github.com/spetersoncode/tablebridge/internal/taskstore"
	"github.com/spetersoncode/tablebridge/internal/telemetry"
)

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req a2a.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("invalid JSON-RPC body", "error", err)
		s.metrics.RPCRequest("", "parse_error")
		writeJSON(w, http.StatusOK, a2a.NewErrorResponse(nil, a2a.NewRPCError(a2a.CodeParseError, "Parse error: %v", err)))
		return
	}
	if req.JSONRPC != a2a.JSONRPCVersion || req.Method == "" {
		s.metrics.RPCRequest(req.Method, "invalid_request")
		writeJSON(w, http.StatusOK, a2a.NewErrorResponse(req.ID, a2a.NewRPCError(a2a.CodeInvalidRequest, "Invalid Request")))
		return
	}

	method := a2a.CanonicalMethod(req.Method)
	ctx, span := telemetry.StartRPCSpan(r.Context(), method)
	logger := s.logger.With("method", method, "request_id", requestID(r))

	var (
		result any
		rpcErr *a2a.RPCError
	)
	switch method {
	case a2a.MethodMessageSend:
		result, rpcErr = s.sendMessage(ctx, r, req.Params)
	case a2a.MethodMessageStream:
		rpcErr = s.streamMessage(ctx, w, r, req)
	case a2a.MethodTasksGet:
		result, rpcErr = s.getTask(req.Params)
	case a2a.MethodTasksCancel:
		result, rpcErr = s.cancelTask(ctx, req.Params)
	default:
		rpcErr = a2a.NewRPCError(a2a.CodeMethodNotFound, "Method not found: %s", req.Method)
	}

	var spanErr error
	outcome := "ok"
	if rpcErr != nil {
		spanErr = rpcErr
		outcome = "error"
		logger.Warn("JSON-RPC request failed", "code", rpcErr.Code, "error", rpcErr.Message)
	}
	telemetry.End(span, spanErr)
	s.metrics.RPCRequest(method, outcome)

	switch {
	case rpcErr != nil:
		writeJSON(w, http.StatusOK, a2a.NewErrorResponse(req.ID, rpcErr))
	case method != a2a.MethodMessageStream:
		writeJSON(w, http.StatusOK, a2a.NewResponse(req.ID, result))
	}
}

// beginTurn stores the inbound message on its task and builds the turn
// request. A message naming an unknown task starts that task.
func (s *Server) beginTurn(r *http.Request, raw json.RawMessage) (executor.RequestContext, *a2a.Task, *a2a.SendConfiguration, *a2a.RPCError) {
	var params a2a.SendMessageParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return executor.RequestContext{}, nil, nil, a2a.NewRPCError(a2a.CodeInvalidParams, "Invalid params: %v", err)
	}
	msg := params.Message
	if len(msg.Parts) == 0 {
		return executor.RequestContext{}, nil, nil, a2a.NewRPCError(a2a.CodeInvalidParams, "Invalid params: message has no parts")
	}
	if msg.Role == "" {
		msg.Role = a2a.RoleUser
	}
	msg.Kind = "message"
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}

	var task *a2a.Task
	if msg.TaskID != "" {
		existing, err := s.tasks.Get(msg.TaskID)
		switch {
		case err == nil:
			if existing.Status.State.IsTerminal() {
				return executor.RequestContext{}, nil, nil, a2a.NewRPCError(a2a.CodeInvalidParams,
					"Task %s is %s and cannot accept messages", existing.ID, existing.Status.State)
			}
			task = existing
		case !errors.Is(err, taskstore.ErrNotFound):
			return executor.RequestContext{}, nil, nil, a2a.NewRPCError(a2a.CodeInternalError, "Internal error: %v", err)
		}
	}
	if task == nil {
		id := msg.TaskID
		if id == "" {
			id = uuid.NewString()
		}
		contextID := msg.ContextID
		if contextID == "" {
			contextID = uuid.NewString()
		}
		task = a2a.NewTask(id, contextID)
	}
	msg.TaskID = task.ID
	msg.ContextID = task.ContextID
	task.Apply(msg)

	if err := s.tasks.Save(task); err != nil {
		return executor.RequestContext{}, nil, nil, a2a.NewRPCError(a2a.CodeInternalError, "Internal error: %v", err)
	}
	req := executor.RequestContext{
		TaskID:     task.ID,
		ContextID:  task.ContextID,
		Message:    msg,
		Extensions: requestedExtensions(r, &params),
	}
	return req, task, params.Configuration, nil
}

func (s *Server) sendMessage(ctx context.Context, r *http.Request, raw json.RawMessage) (any, *a2a.RPCError) {
	req, _, cfg, rpcErr := s.beginTurn(r, raw)
	if rpcErr != nil {
		return nil, rpcErr
	}

	rec := a2a.NewRecorder()
	s.exec.Execute(ctx, req, s.storing(req.TaskID, rec))
	select {
	case <-rec.Done():
	case <-ctx.Done():
		return nil, a2a.NewRPCError(a2a.CodeInternalError, "Internal error: %v", ctx.Err())
	}

	task, err := s.tasks.Get(req.TaskID)
	if err != nil {
		return nil, a2a.NewRPCError(a2a.CodeInternalError, "Internal error: %v", err)
	}
	if cfg != nil {
		trimHistory(task, cfg.HistoryLength)
	}
	return task, nil
}

func (s *Server) streamMessage(ctx context.Context, w http.ResponseWriter, r *http.Request, req a2a.Request) *a2a.RPCError {
	turn, task, _, rpcErr := s.beginTurn(r, req.Params)
	if rpcErr != nil {
		return rpcErr
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		return a2a.NewRPCError(a2a.CodeInternalError, "Internal error: streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sse := newSSESink(w, flusher, req.ID)
	if err := sse.write(task); err != nil {
		s.logger.Warn("failed to write task snapshot", "task_id", task.ID, "error", err)
		return nil
	}

	s.exec.Execute(ctx, turn, s.storing(turn.TaskID, sse))
	select {
	case <-sse.done:
	case <-ctx.Done():
	}
	sse.close()
	return nil
}

func (s *Server) getTask(raw json.RawMessage) (any, *a2a.RPCError) {
	var params a2a.TaskQueryParams
	if err := json.Unmarshal(raw, &params); err != nil || params.ID == "" {
		return nil, a2a.NewRPCError(a2a.CodeInvalidParams, "Invalid params: task id is required")
	}
	task, rpcErr := s.loadTask(params.ID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	trimHistory(task, params.HistoryLength)
	return task, nil
}

// cancelTask cancels a task that has not reached a terminal state. A task
// waiting for input has no running turn and is marked canceled directly.
func (s *Server) cancelTask(ctx context.Context, raw json.RawMessage) (any, *a2a.RPCError) {
	var params a2a.TaskIDParams
	if err := json.Unmarshal(raw, &params); err != nil || params.ID == "" {
		return nil, a2a.NewRPCError(a2a.CodeInvalidParams, "Invalid params: task id is required")
	}
	task, rpcErr := s.loadTask(params.ID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if task.Status.State.IsTerminal() {
		return nil, a2a.NewRPCError(a2a.CodeTaskNotCancelable, "Task cannot be canceled: %s is %s", task.ID, task.Status.State)
	}

	rec := a2a.NewRecorder()
	s.exec.Cancel(ctx, task.ID, rec)

	ev, ok := rec.Last()
	if !ok {
		current, rpcErr := s.loadTask(task.ID)
		if rpcErr != nil {
			return nil, rpcErr
		}
		if current.Status.State.IsTerminal() {
			return current, nil
		}
		ev = a2a.NewMapper(task.ID, task.ContextID).Canceled()
	}

	updated, err := s.tasks.Update(task.ID, func(t *a2a.Task) { t.Status = ev.Status })
	if err != nil {
		return nil, a2a.NewRPCError(a2a.CodeInternalError, "Internal error: %v", err)
	}
	return updated, nil
}

func (s *Server) loadTask(id string) (*a2a.Task, *a2a.RPCError) {
	task, err := s.tasks.Get(id)
	if errors.Is(err, taskstore.ErrNotFound) {
		return nil, a2a.NewRPCError(a2a.CodeTaskNotFound, "Task not found: %s", id)
	}
	if err != nil {
		return nil, a2a.NewRPCError(a2a.CodeInternalError, "Internal error: %v", err)
	}
	return task, nil
}

func trimHistory(task *a2a.Task, n *int) {
	if n == nil || *n < 0 || len(task.History) <= *n {
		return
	}
	task.History = task.History[len(task.History)-*n:]
}
