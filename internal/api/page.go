package api

import (
	"bytes"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/eugenenazirov/boxfit/internal/form"
	"github.com/eugenenazirov/boxfit/internal/render"
	"github.com/eugenenazirov/boxfit/internal/storage"
)

// SessionCookie holds the session backing the HTML form.
const SessionCookie = "boxfit_session"

const (
	actionAddProduct = "add_product"
	actionAddBox     = "add_box"
	actionCheck      = "check"
)

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := h.pageSession(w, r)
	if err != nil {
		h.writePageError(w, err)
		return
	}
	h.writePage(w, sess)
}

// handleFormAction replaces the session's entries with the submitted rows and
// then applies the pressed button. Results only change on check.
func (h *Handler) handleFormAction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "unable to parse form", http.StatusBadRequest)
		return
	}

	action := r.PostForm.Get("action")
	switch action {
	case "", actionAddProduct, actionAddBox, actionCheck:
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}

	sess, err := h.pageSession(w, r)
	if err != nil {
		h.writePageError(w, err)
		return
	}

	products := formEntries(r, "product_name", "product_dimensions")
	boxes := formEntries(r, "box_name", "box_dimensions")

	sess, err = h.storage.Update(sess.ID, func(s storage.Session) (storage.Session, error) {
		s.State = form.FromEntries(products, boxes)
		switch action {
		case actionAddProduct:
			s.State = s.State.AddProduct()
		case actionAddBox:
			s.State = s.State.AddBox()
		case actionCheck:
			s.Results = h.evaluator.Evaluate(s.State.Products(), s.State.Boxes())
			s.Evaluated = true
		}
		return s, nil
	})
	if err != nil {
		h.writePageError(w, err)
		return
	}

	h.writePage(w, sess)
}

// pageSession returns the session named by the cookie, starting a new one when
// the cookie is missing or the session has expired.
func (h *Handler) pageSession(w http.ResponseWriter, r *http.Request) (storage.Session, error) {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		sess, err := h.storage.Get(c.Value)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, storage.ErrSessionNotFound) {
			return storage.Session{}, err
		}
	}

	sess, err := h.storage.Create()
	if err != nil {
		return storage.Session{}, err
	}
	h.logger.Debug("form session created",
		zap.String("session_id", sess.ID),
		zap.String("request_id", requestIDFromContext(r.Context())),
	)

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

func (h *Handler) writePage(w http.ResponseWriter, sess storage.Session) {
	view := render.NewPageView(sess.State, nil)
	if sess.Evaluated {
		view.Results = sess.Results
		view.Evaluated = true
	}

	var buf bytes.Buffer
	if err := render.Page(&buf, view); err != nil {
		h.logger.Error("render page failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) writePageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrSessionLimit):
		http.Error(w, "too many active sessions, please retry later", http.StatusServiceUnavailable)
		return
	case errors.Is(err, storage.ErrSessionNotFound):
		http.Error(w, "session expired, please reload the page", http.StatusConflict)
		return
	}
	h.logger.Error("form request failed", zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// formEntries pairs the repeated name and dimensions fields in submission
// order. A missing half of a pair is left blank.
func formEntries(r *http.Request, nameKey, dimsKey string) []form.Entry {
	names := r.PostForm[nameKey]
	dims := r.PostForm[dimsKey]

	n := max(len(names), len(dims))
	entries := make([]form.Entry, n)
	for i := range entries {
		if i < len(names) {
			entries[i].Name = names[i]
		}
		if i < len(dims) {
			entries[i].Dimensions = dims[i]
		}
	}
	return entries
}
