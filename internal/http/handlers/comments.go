package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/discussion-service/internal/errors"
)

// SubmitComment — POST /sessions/{id}/comments.
func (h *Handlers) SubmitComment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var in submitCommentRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	out, err := sess.SubmitComment(r.Context(), in.ParentID, in.Body)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

// DeleteComment — DELETE /sessions/{id}/comments/{cid}.
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	cid, ok := commentID(w, r)
	if !ok {
		return
	}

	if err := sess.DeleteComment(r.Context(), cid); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleReaction — POST /sessions/{id}/comments/{cid}/reaction.
func (h *Handlers) ToggleReaction(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	cid, ok := commentID(w, r)
	if !ok {
		return
	}

	reaction, err := sess.ToggleReaction(r.Context(), cid)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reactionResponse{CommentID: cid, Reaction: reaction})
}

// ToggleCollapse — POST /sessions/{id}/comments/{cid}/collapse.
func (h *Handlers) ToggleCollapse(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	cid, ok := commentID(w, r)
	if !ok {
		return
	}

	collapsed, err := sess.ToggleCollapse(cid)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, collapseResponse{CommentID: cid, Collapsed: collapsed})
}

// Report — POST /sessions/{id}/comments/{cid}/report.
func (h *Handlers) Report(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	cid, ok := commentID(w, r)
	if !ok {
		return
	}

	var in reportRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	rep, err := sess.Report(r.Context(), cid, in.Reason, in.Details)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, rep)
}

// Hide — POST /sessions/{id}/comments/{cid}/hide.
func (h *Handlers) Hide(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	cid, ok := commentID(w, r)
	if !ok {
		return
	}

	if err := sess.Hide(r.Context(), cid); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unhide — DELETE /sessions/{id}/comments/{cid}/hide.
func (h *Handlers) Unhide(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	cid, ok := commentID(w, r)
	if !ok {
		return
	}

	if err := sess.Unhide(r.Context(), cid); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
