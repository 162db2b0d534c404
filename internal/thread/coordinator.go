package thread

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/pribylovaa/discussion-service/internal/metrics"
	"github.com/pribylovaa/discussion-service/internal/models"
	"github.com/pribylovaa/discussion-service/internal/moderation"
	"github.com/pribylovaa/discussion-service/internal/pkg/log"
	"github.com/pribylovaa/discussion-service/internal/storage"
)

// Оптимистичные мутации. Каждая проходит PENDING -> CONFIRMED | ROLLED_BACK;
// ошибки сводятся к таксономии движка и не оставляют частично применённых изменений.

// SubmitComment публикует комментарий зрителя (parentID == "" — корневой).
// Пустое тело отвергается без обращения к хранилищу и без временного узла.
// При успехе временный узел отбрасывается целиком и выполняется полная перезагрузка;
// при сбое тело возвращается в черновик родителя (см. Draft).
func (s *Session) SubmitComment(ctx context.Context, parentID, body string) (*models.Comment, error) {
	const op = "thread/Session/SubmitComment"

	parentID = strings.TrimSpace(parentID)
	text := strings.TrimSpace(body)
	lg := log.From(ctx).With("op", op, "parent_id", parentID)

	if text == "" {
		metrics.Mutations.WithLabelValues(string(opSubmit), metrics.OutcomeRejected).Inc()
		lg.Warn("validation: empty body")
		return nil, wrap(op, ErrValidation)
	}

	if utf8.RuneCountInString(text) > s.opts.MaxBodyRunes {
		metrics.Mutations.WithLabelValues(string(opSubmit), metrics.OutcomeRejected).Inc()
		lg.Warn("validation: body too long", "runes", utf8.RuneCountInString(text))
		return nil, wrap(op, ErrValidation)
	}

	if s.viewerID == "" {
		return nil, wrap(op, ErrAuth)
	}

	key := mutationKey{target: parentID, op: opSubmit}

	s.mu.Lock()
	if err := s.liveLocked(); err != nil {
		s.mu.Unlock()
		return nil, wrap(op, err)
	}
	if parentID != "" && !s.knownLocked(parentID) {
		s.mu.Unlock()
		return nil, wrap(op, ErrNotFound)
	}
	if err := s.beginLocked(key); err != nil {
		s.mu.Unlock()
		return nil, wrap(op, err)
	}

	scope, contentID := s.scope, s.contentID
	now := s.now().UTC()
	tmp := models.Comment{
		ID:        models.TempIDPrefix + s.newID(),
		ContentID: contentID,
		AuthorID:  s.viewerID,
		Body:      text,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.transients = append(s.transients, transient{rec: tmp})
	s.rebuildLocked("mutation")
	s.mu.Unlock()

	created, err := s.deps.Comments.SubmitComment(ctx, models.Comment{
		ContentID: contentID,
		AuthorID:  s.viewerID,
		Body:      text,
		ParentID:  parentID,
	})

	s.mu.Lock()
	if !s.finishLocked(key, scope) {
		s.mu.Unlock()
		return nil, wrap(op, ErrClosed)
	}

	if err != nil {
		s.dropTransientLocked(tmp.ID)
		s.drafts[parentID] = body
		kind := classify(err)
		s.noteFailureLocked(kind)
		s.rebuildLocked("rollback")
		s.mu.Unlock()

		metrics.Mutations.WithLabelValues(string(opSubmit), metrics.OutcomeRolledBack).Inc()
		lg.Warn("submit failed, draft restored", "err", err)
		s.reconcile(ctx, kind)

		return nil, wrap(op, kind)
	}

	realID := ""
	if created != nil {
		realID = created.ID
	}
	s.confirmTransientLocked(tmp.ID, realID)
	delete(s.drafts, parentID)
	s.rebuildLocked("mutation")
	s.mu.Unlock()

	metrics.Mutations.WithLabelValues(string(opSubmit), metrics.OutcomeConfirmed).Inc()
	s.refetchAfterMutation(ctx, op)

	return created, nil
}

// ToggleReaction мгновенно инвертирует лайк зрителя (count ±1). Подтверждённое сервером
// {liked, count} перезаписывает оптимистичное, даже если расходится с ним;
// при сбое восстанавливается в точности прежняя пара.
func (s *Session) ToggleReaction(ctx context.Context, commentID string) (models.Reaction, error) {
	const op = "thread/Session/ToggleReaction"

	commentID = strings.TrimSpace(commentID)
	lg := log.From(ctx).With("op", op, "comment_id", commentID)

	if s.viewerID == "" {
		return models.Reaction{}, wrap(op, ErrAuth)
	}

	key := mutationKey{target: commentID, op: opReaction}

	s.mu.Lock()
	if err := s.liveLocked(); err != nil {
		s.mu.Unlock()
		return models.Reaction{}, wrap(op, err)
	}
	if strings.HasPrefix(commentID, models.TempIDPrefix) {
		s.mu.Unlock()
		return models.Reaction{}, wrap(op, ErrValidation)
	}
	if !s.knownLocked(commentID) {
		s.mu.Unlock()
		return models.Reaction{}, wrap(op, ErrNotFound)
	}
	if err := s.beginLocked(key); err != nil {
		s.mu.Unlock()
		lg.Warn("toggle rejected: already in flight")
		return models.Reaction{}, wrap(op, err)
	}

	scope := s.scope
	prev := s.reactions[commentID]
	next := models.Reaction{ViewerLiked: !prev.ViewerLiked, Count: prev.Count + 1}
	if prev.ViewerLiked {
		next.Count = max(prev.Count-1, 0)
	}
	s.reactions[commentID] = next
	s.rebuildLocked("mutation")
	s.mu.Unlock()

	st, err := s.deps.Reactions.ToggleReaction(ctx, commentID, s.viewerID)

	s.mu.Lock()
	if !s.finishLocked(key, scope) {
		s.mu.Unlock()
		return models.Reaction{}, wrap(op, ErrClosed)
	}

	if err != nil {
		s.reactions[commentID] = prev
		kind := classify(err)
		s.noteFailureLocked(kind)
		s.rebuildLocked("rollback")
		s.mu.Unlock()

		metrics.Mutations.WithLabelValues(string(opReaction), metrics.OutcomeRolledBack).Inc()
		lg.Warn("toggle failed, rolled back", "err", err)
		s.reconcile(ctx, kind)

		return prev, wrap(op, kind)
	}

	confirmed := st.Reaction()
	s.reactions[commentID] = confirmed
	s.reactionVer[commentID] = s.nextSeqLocked()
	s.rebuildLocked("mutation")
	s.mu.Unlock()

	metrics.Mutations.WithLabelValues(string(opReaction), metrics.OutcomeConfirmed).Inc()

	return confirmed, nil
}

// DeleteComment удаляет комментарий зрителя. Проверка авторства здесь только UX:
// хранилище проверяет права самостоятельно. Удалённый id становится надгробием:
// при политике hide его ответы скрываются вместе с поддеревом.
func (s *Session) DeleteComment(ctx context.Context, commentID string) error {
	const op = "thread/Session/DeleteComment"

	commentID = strings.TrimSpace(commentID)
	lg := log.From(ctx).With("op", op, "comment_id", commentID)

	key := mutationKey{target: commentID, op: opDelete}

	s.mu.Lock()
	if err := s.liveLocked(); err != nil {
		s.mu.Unlock()
		return wrap(op, err)
	}
	rec, ok := s.recordLocked(commentID)
	if !ok {
		s.mu.Unlock()
		return wrap(op, ErrNotFound)
	}
	if s.viewerID == "" {
		s.mu.Unlock()
		return wrap(op, ErrAuth)
	}
	if rec.AuthorID != s.viewerID {
		s.mu.Unlock()
		metrics.Mutations.WithLabelValues(string(opDelete), metrics.OutcomeRejected).Inc()
		lg.Warn("delete rejected: requester is not the author")
		return wrap(op, classify(storage.ErrPermissionDenied))
	}
	if err := s.beginLocked(key); err != nil {
		s.mu.Unlock()
		return wrap(op, err)
	}
	scope := s.scope
	s.mu.Unlock()

	err := s.deps.Comments.DeleteComment(ctx, commentID, s.viewerID)

	s.mu.Lock()
	if !s.finishLocked(key, scope) {
		s.mu.Unlock()
		return wrap(op, ErrClosed)
	}

	if err != nil {
		kind := classify(err)
		s.noteFailureLocked(kind)
		s.rebuildLocked("rollback")
		s.mu.Unlock()

		metrics.Mutations.WithLabelValues(string(opDelete), metrics.OutcomeRolledBack).Inc()
		lg.Warn("delete failed", "err", err)
		s.reconcile(ctx, kind)

		return wrap(op, kind)
	}

	s.tombstones.Add(commentID)
	s.rebuildLocked("mutation")
	s.mu.Unlock()

	metrics.Mutations.WithLabelValues(string(opDelete), metrics.OutcomeConfirmed).Inc()
	s.refetchAfterMutation(ctx, op)

	return nil
}

// Hide скрывает комментарий (и его поддерево) для зрителя.
func (s *Session) Hide(ctx context.Context, commentID string) error {
	return s.setHidden(ctx, "thread/Session/Hide", commentID, true)
}

// Unhide возвращает видимость; лес перестраивается из плоского источника, поэтому
// поддерево восстанавливается полностью.
func (s *Session) Unhide(ctx context.Context, commentID string) error {
	return s.setHidden(ctx, "thread/Session/Unhide", commentID, false)
}

func (s *Session) setHidden(ctx context.Context, op, commentID string, hide bool) error {
	commentID = strings.TrimSpace(commentID)

	if s.viewerID == "" {
		return wrap(op, ErrAuth)
	}
	if commentID == "" {
		return wrap(op, ErrValidation)
	}

	key := mutationKey{target: commentID, op: opHide}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return wrap(op, ErrClosed)
	}
	if err := s.beginLocked(key); err != nil {
		s.mu.Unlock()
		return wrap(op, err)
	}
	scope := s.scope
	s.mu.Unlock()

	var err error
	if hide {
		_, err = s.deps.Preferences.Hide(ctx, s.viewerID, commentID)
	} else {
		_, err = s.deps.Preferences.Unhide(ctx, s.viewerID, commentID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.finishLocked(key, scope) {
		return wrap(op, ErrClosed)
	}

	if err != nil {
		metrics.Mutations.WithLabelValues(string(opHide), metrics.OutcomeRejected).Inc()
		return wrap(op, classify(err))
	}

	// Применяется только своё изменение: параллельные Hide/Unhide других id не теряются.
	next := s.hidden.Clone()
	if hide {
		next.Add(commentID)
	} else {
		next.Remove(commentID)
	}
	s.hidden = next
	s.hiddenVer = s.nextSeqLocked()
	s.rebuildLocked("overlay")
	metrics.Mutations.WithLabelValues(string(opHide), metrics.OutcomeConfirmed).Inc()

	return nil
}

// Report отправляет жалобу. При включённом автоскрытии комментарий скрывается
// только после успешного ответа, никогда заранее.
func (s *Session) Report(ctx context.Context, commentID string, reason models.ReportReason, details string) (*models.Report, error) {
	const op = "thread/Session/Report"

	commentID = strings.TrimSpace(commentID)
	lg := log.From(ctx).With("op", op, "comment_id", commentID, "reason", string(reason))

	if s.viewerID == "" {
		return nil, wrap(op, ErrAuth)
	}

	key := mutationKey{target: commentID, op: opReport}

	s.mu.Lock()
	if err := s.liveLocked(); err != nil {
		s.mu.Unlock()
		return nil, wrap(op, err)
	}
	if !s.knownLocked(commentID) {
		s.mu.Unlock()
		return nil, wrap(op, ErrNotFound)
	}
	if err := s.beginLocked(key); err != nil {
		s.mu.Unlock()
		return nil, wrap(op, err)
	}
	scope := s.scope
	s.mu.Unlock()

	rep, err := s.deps.Preferences.Report(ctx, models.Report{
		TargetID:   commentID,
		ReporterID: s.viewerID,
		Reason:     reason,
		Details:    details,
	})

	s.mu.Lock()
	if !s.finishLocked(key, scope) {
		s.mu.Unlock()
		return nil, wrap(op, ErrClosed)
	}
	autoHide := s.autoHide
	s.mu.Unlock()

	if err != nil {
		metrics.Mutations.WithLabelValues(string(opReport), metrics.OutcomeRolledBack).Inc()
		lg.Warn("report failed", "err", err)
		return nil, wrap(op, classify(err))
	}

	metrics.Mutations.WithLabelValues(string(opReport), metrics.OutcomeConfirmed).Inc()

	if autoHide {
		if err := s.Hide(ctx, commentID); err != nil {
			lg.Warn("auto-hide after report failed", "err", err)
		}
	}

	return rep, nil
}

// ToggleCollapse сворачивает/разворачивает узел и возвращает новое состояние.
func (s *Session) ToggleCollapse(commentID string) (bool, error) {
	const op = "thread/Session/ToggleCollapse"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, wrap(op, ErrClosed)
	}
	if !s.knownLocked(commentID) {
		return false, wrap(op, ErrNotFound)
	}

	collapsed := !s.collapsed.Has(commentID)
	if collapsed {
		s.collapsed.Add(commentID)
	} else {
		s.collapsed.Remove(commentID)
	}
	s.rebuildLocked("overlay")

	return collapsed, nil
}

// SetAutoHideOnReport включает/выключает автоскрытие по жалобе.
func (s *Session) SetAutoHideOnReport(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.autoHide == enabled {
		return
	}
	s.autoHide = enabled
	s.rebuildLocked("overlay")
}

// Draft возвращает и очищает тело, восстановленное после неудачной отправки.
func (s *Session) Draft(parentID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, ok := s.drafts[strings.TrimSpace(parentID)]
	delete(s.drafts, strings.TrimSpace(parentID))

	return body, ok
}

// MarkSeen отмечает все текущие комментарии как просмотренные: отметка fresh снимается.
func (s *Session) MarkSeen() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.viewed == nil {
		s.viewed = moderation.Set{}
	}
	for _, rec := range s.records {
		s.viewed.Add(rec.ID)
	}
	s.rebuildLocked("overlay")
}

// reconcile — ErrNotFound означает, что цель исчезла: вид сверяется с источником.
func (s *Session) reconcile(ctx context.Context, kind error) {
	if errors.Is(kind, ErrNotFound) {
		s.refetchAfterMutation(ctx, "thread/Session/reconcile")
	}
}

// refetchAfterMutation — отдельная (не разделяемая) загрузка, начатая после подтверждения.
// Её сбой не отменяет подтверждённую мутацию.
func (s *Session) refetchAfterMutation(ctx context.Context, op string) {
	if err := s.reload(ctx, "mutation"); err != nil {
		log.From(ctx).Warn("refetch after mutation failed", "op", op, "err", err)
	}
}

func (s *Session) liveLocked() error {
	if s.closed {
		return ErrClosed
	}
	if !s.state.Live() {
		return ErrNotReady
	}

	return nil
}

func (s *Session) beginLocked(key mutationKey) error {
	if s.pendingLocked(key) {
		metrics.Mutations.WithLabelValues(string(key.op), metrics.OutcomeRejected).Inc()
		return ErrMutationInFlight
	}
	s.inflight[key] = struct{}{}

	return nil
}

// finishLocked снимает ключ мутации; false — ответ пришёл в уже снесённую область.
func (s *Session) finishLocked(key mutationKey, scope uint64) bool {
	if s.closed || scope != s.scope {
		metrics.Mutations.WithLabelValues(string(key.op), metrics.OutcomeDiscarded).Inc()
		return false
	}
	delete(s.inflight, key)

	return true
}

func (s *Session) noteFailureLocked(kind error) {
	if errors.Is(kind, ErrNetwork) {
		s.advisory = kind.Error()
	}
}

func (s *Session) recordLocked(id string) (models.Comment, bool) {
	for _, rec := range s.records {
		if rec.ID == id {
			return rec, true
		}
	}

	return models.Comment{}, false
}

func (s *Session) knownLocked(id string) bool {
	if id == "" || s.tombstones.Has(id) {
		return false
	}
	_, ok := s.recordLocked(id)

	return ok
}

func (s *Session) dropTransientLocked(id string) {
	for i, t := range s.transients {
		if t.rec.ID == id {
			s.transients = append(s.transients[:i], s.transients[i+1:]...)
			return
		}
	}
}

func (s *Session) confirmTransientLocked(id, realID string) {
	seq := s.nextSeqLocked()
	for i := range s.transients {
		if s.transients[i].rec.ID == id {
			s.transients[i].confirmed = true
			s.transients[i].confirmSeq = seq
			s.transients[i].realID = realID
			return
		}
	}
}
