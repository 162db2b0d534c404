package handlers

import (
	"net/http"
	"strings"

	apierrors "github.com/pribylovaa/discussion-service/internal/errors"
	"github.com/pribylovaa/discussion-service/internal/http/middleware"
	"github.com/pribylovaa/discussion-service/internal/thread"
)

func viewOf(sess *thread.Session) sessionResponse {
	return sessionResponse{SessionID: sess.ID(), ViewerID: sess.ViewerID(), View: sess.View()}
}

// OpenSession — POST /sessions.
func (h *Handlers) OpenSession(w http.ResponseWriter, r *http.Request) {
	var in openSessionRequest
	if err := decodeStrict(r, &in); err != nil || strings.TrimSpace(in.ContentID) == "" {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	sess, err := h.Service.Open(r.Context(), in.ContentID, middleware.ViewerFrom(r.Context()))
	if err != nil && !loadFailed(sess, err) {
		apierrors.WriteError(w, r, err)
		return
	}

	w.Header().Set("Location", "/sessions/"+sess.ID())
	writeJSON(w, http.StatusCreated, viewOf(sess))
}

// GetSession — GET /sessions/{id}.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, viewOf(sess))
}

// CloseSession — DELETE /sessions/{id}.
func (h *Handlers) CloseSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.Service.Close(r.Context(), sess.ID(), sess.ViewerID()); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SwitchContent — PUT /sessions/{id}/content.
func (h *Handlers) SwitchContent(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var in switchContentRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	sess, err := h.Service.SwitchContent(r.Context(), sess.ID(), sess.ViewerID(), in.ContentID)
	if err != nil && !loadFailed(sess, err) {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, viewOf(sess))
}

// Refresh — POST /sessions/{id}/refresh.
// Сбой обновления живой сессии не ошибка запроса: прежний вид остаётся, причина в advisory.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := sess.Refresh(r.Context()); err != nil && !sess.State().Live() {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, viewOf(sess))
}

// Retry — POST /sessions/{id}/retry.
func (h *Handlers) Retry(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := sess.Retry(r.Context()); err != nil && !loadFailed(sess, err) {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, viewOf(sess))
}

// MarkSeen — POST /sessions/{id}/seen.
func (h *Handlers) MarkSeen(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	sess.MarkSeen()
	writeJSON(w, http.StatusOK, viewOf(sess))
}

// SetModeration — PUT /sessions/{id}/moderation.
func (h *Handlers) SetModeration(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var in moderationRequest
	if err := decodeStrict(r, &in); err != nil || in.AutoHideOnReport == nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	sess.SetAutoHideOnReport(*in.AutoHideOnReport)
	writeJSON(w, http.StatusOK, viewOf(sess))
}

// Draft — GET /sessions/{id}/draft?parent_id=... Черновик выдаётся один раз.
func (h *Handlers) Draft(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	parentID := strings.TrimSpace(r.URL.Query().Get("parent_id"))
	body, found := sess.Draft(parentID)

	writeJSON(w, http.StatusOK, draftResponse{ParentID: parentID, Body: body, Found: found})
}
