package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/boxfit/internal/fit"
	"github.com/eugenenazirov/boxfit/internal/form"
	"github.com/eugenenazirov/boxfit/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// DefaultMaxBodyBytes caps request bodies unless overridden with WithMaxBodyBytes.
const DefaultMaxBodyBytes int64 = 1 << 20

const (
	stateIdle      = "idle"
	stateEvaluated = "evaluated"
)

// Handler wires the fit evaluator and session storage into HTTP handlers.
type Handler struct {
	evaluator fit.Evaluator
	storage   storage.Storage
	logger    *zap.Logger

	clock        func() time.Time
	maxBodyBytes int64
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithHandlerLogger sets the logger used for session lifecycle events.
func WithHandlerLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMaxBodyBytes limits the size of request bodies. Values <= 0 keep the default.
func WithMaxBodyBytes(n int64) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(eval fit.Evaluator, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		evaluator: eval,
		storage:   store,
		logger:    zap.NewNop(),
		clock: func() time.Time {
			return time.Now().UTC()
		},
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	results := h.evaluator.Evaluate(req.Products, req.Boxes)
	writeJSON(w, http.StatusOK, checkResponse{Results: results})
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.storage.Create()
	if err != nil {
		writeStoreError(w, err)
		return
	}

	h.logger.Debug("session created",
		zap.String("session_id", sess.ID),
		zap.String("request_id", requestIDFromContext(r.Context())),
	)
	writeJSON(w, http.StatusCreated, newSessionResponse(sess))
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.storage.Get(r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.storage.Delete(id); err != nil {
		writeStoreError(w, err)
		return
	}

	h.logger.Debug("session deleted", zap.String("session_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	h.updateSession(w, r, func(s storage.Session) (storage.Session, error) {
		s.State = s.State.AddProduct()
		return s, nil
	})
}

func (h *Handler) handleAddBox(w http.ResponseWriter, r *http.Request) {
	h.updateSession(w, r, func(s storage.Session) (storage.Session, error) {
		s.State = s.State.AddBox()
		return s, nil
	})
}

func (h *Handler) handleSetField(w http.ResponseWriter, r *http.Request) {
	list, err := form.ParseList(r.PathValue("list"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "index must be an integer")
		return
	}

	var req setFieldRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	field, err := form.ParseField(req.Field)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	h.updateSession(w, r, func(s storage.Session) (storage.Session, error) {
		next, err := s.State.SetField(list, index, field, req.Value)
		if err != nil {
			return s, err
		}
		s.State = next
		return s, nil
	})
}

func (h *Handler) handleCheckSession(w http.ResponseWriter, r *http.Request) {
	h.updateSession(w, r, func(s storage.Session) (storage.Session, error) {
		s.Results = h.evaluator.Evaluate(s.State.Products(), s.State.Boxes())
		s.Evaluated = true
		return s, nil
	})
}

func (h *Handler) updateSession(w http.ResponseWriter, r *http.Request, fn func(storage.Session) (storage.Session, error)) {
	sess, err := h.storage.Update(r.PathValue("id"), fn)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

// decodeJSON reports false after writing an error response.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Invalid request", "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return false
	}
	return true
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type checkRequest struct {
	Products []form.Entry `json:"products"`
	Boxes    []form.Entry `json:"boxes"`
}

type checkResponse struct {
	Results []fit.Result `json:"results"`
}

type setFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type sessionResponse struct {
	ID        string       `json:"id"`
	Products  []form.Entry `json:"products"`
	Boxes     []form.Entry `json:"boxes"`
	State     string       `json:"state"`
	Results   []fit.Result `json:"results"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func newSessionResponse(s storage.Session) sessionResponse {
	state := stateIdle
	if s.Evaluated {
		state = stateEvaluated
	}
	results := s.Results
	if results == nil {
		results = []fit.Result{}
	}
	return sessionResponse{
		ID:        s.ID,
		Products:  s.State.Products(),
		Boxes:     s.State.Boxes(),
		State:     state,
		Results:   results,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{
		Error:   message,
		Details: details,
	})
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Session not found", err.Error())
	case errors.Is(err, storage.ErrSessionLimit):
		writeError(w, http.StatusServiceUnavailable, "Too many sessions", err.Error())
	case errors.Is(err, form.ErrIndexOutOfRange):
		writeError(w, http.StatusConflict, "Invalid entry", err.Error())
	case errors.Is(err, form.ErrUnknownList), errors.Is(err, form.ErrUnknownField):
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
	default:
		writeInternalError(w, err)
	}
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
