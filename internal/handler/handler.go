// Package handler contains chi HTTP handlers that serve the activity board
// page and translate form posts into board events.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/activity-board/internal/logger"
	"github.com/Shivanand-hulikatti/activity-board/internal/model"
	"github.com/Shivanand-hulikatti/activity-board/internal/render"
	"github.com/Shivanand-hulikatti/activity-board/internal/service"
	"github.com/Shivanand-hulikatti/activity-board/internal/view"
)

// BoardHandler holds the HTTP handlers for the board page.
type BoardHandler struct {
	sessions *SessionStore
	log      logger.Logger
}

// NewBoardHandler constructs a BoardHandler.
func NewBoardHandler(sessions *SessionStore, log logger.Logger) *BoardHandler {
	return &BoardHandler{sessions: sessions, log: log}
}

// Routes mounts the board routes on r.
func (h *BoardHandler) Routes(r chi.Router) {
	r.Get("/", h.Page)
	r.Post(render.SignupPath, h.Signup)
	r.Post(render.UnregisterPath, h.Unregister)
	r.Get(render.MessagePath, h.Message)
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

// IsHTMXRequest reports whether r was issued by htmx.
func IsHTMXRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return strings.EqualFold(r.Header.Get("HX-Request"), "true")
}

func (h *BoardHandler) session(w http.ResponseWriter, r *http.Request) *Session {
	sess, created := h.sessions.Resolve(r)
	if created {
		h.sessions.SetCookie(w, sess)
		h.log.Debug("board session created", map[string]interface{}{"session": sess.ID})
	}
	return sess
}

// dispatch runs ev on the session's board and waits for it. It reports false
// when the client went away first; the flow still completes in the
// background.
func (h *BoardHandler) dispatch(ctx context.Context, sess *Session, ev service.Event, payload any) bool {
	select {
	case err := <-sess.Board.Dispatch(ctx, ev, payload):
		if err != nil {
			h.log.WithError(err).Error("board event failed", map[string]interface{}{"event": string(ev)})
		}
		return true
	case <-ctx.Done():
		return false
	}
}

func pageState(s view.Snapshot, b *service.Board) render.PageState {
	return render.PageState{
		ListHTML:    s.ListHTML,
		OptionsHTML: s.OptionsHTML,
		Message:     s.Message,
		Form:        s.Form,
		Alerts:      s.Alerts,
		MessagePoll: b.MessageTimeout(),
	}
}

// respond answers a form post: htmx gets the list plus out-of-band updates,
// a plain form post is redirected back to the page, which then shows the
// flow's result without loading the catalog again.
func (h *BoardHandler) respond(w http.ResponseWriter, r *http.Request, sess *Session) {
	if !IsHTMXRequest(r) {
		sess.markSettled()
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	templ.Handler(render.Fragment(pageState(sess.Doc.Flush(), sess.Board))).ServeHTTP(w, r)
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// Page handles GET /
// A page load is a fresh "ready": the catalog is fetched before the page is
// rendered. The redirect that follows a plain form post is the exception;
// the flow has already left the board as it should be shown.
func (h *BoardHandler) Page(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	settled := sess.takeSettled() && sess.Doc.Snapshot().ListHTML != render.LoadingHTML
	if !settled && !h.dispatch(r.Context(), sess, service.EventReady, nil) {
		return
	}
	templ.Handler(render.Page(pageState(sess.Doc.Flush(), sess.Board))).ServeHTTP(w, r)
}

// Signup handles POST /board/signup
// Form fields: email, activity.
func (h *BoardHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}
	form := service.SignupForm{
		Email:    r.PostFormValue("email"),
		Activity: r.PostFormValue("activity"),
	}

	sess := h.session(w, r)
	sess.Doc.SetForm(model.FormState{Email: form.Email, Activity: form.Activity})
	if !h.dispatch(r.Context(), sess, service.EventSubmit, form) {
		return
	}
	h.respond(w, r, sess)
}

// Unregister handles POST /board/unregister
// Form fields: email, activity. The browser has already confirmed.
func (h *BoardHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}
	target := service.DeleteTarget{
		Email:    r.PostFormValue("email"),
		Activity: r.PostFormValue("activity"),
	}

	sess := h.session(w, r)
	if !h.dispatch(r.Context(), sess, service.EventDelete, target) {
		return
	}
	h.respond(w, r, sess)
}

// Message handles GET /board/message
// Returns the message area as it stands; polled to pick up the hide.
func (h *BoardHandler) Message(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	msg := sess.Doc.Snapshot().Message
	templ.Handler(render.MessageBox(msg, sess.Board.MessageTimeout())).ServeHTTP(w, r)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
