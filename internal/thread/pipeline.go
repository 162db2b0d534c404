package thread

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/discussion-service/internal/metrics"
	"github.com/pribylovaa/discussion-service/internal/models"
	"github.com/pribylovaa/discussion-service/internal/moderation"
	"github.com/pribylovaa/discussion-service/internal/pkg/log"
	"github.com/pribylovaa/discussion-service/internal/tree"
)

// reload — полный цикл fetch -> build -> aggregate -> apply для текущей области.
// Во время первичной загрузки сбой переводит сессию в ERROR; во время обновления
// предыдущий вид сохраняется, а сбой становится подсказкой (advisory).
func (s *Session) reload(ctx context.Context, trigger string) error {
	const op = "thread/Session/reload"

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return wrap(op, ErrClosed)
	}
	scope, contentID := s.scope, s.contentID
	seq := s.nextSeqLocked()
	initial := !s.state.Live()
	if initial {
		s.state = StateLoading
	} else {
		s.fetching++
		if s.state != StateRefreshing {
			s.state = StateRefreshing
			s.rebuildLocked(trigger)
		}
	}
	s.mu.Unlock()

	lg := log.From(ctx).With("op", op, "content_id", contentID, "trigger", trigger, "seq", seq)

	var (
		records   []models.Comment
		total     int
		hidden    moderation.Set
		hiddenErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, total, err = s.deps.Comments.FetchComments(gctx, contentID)
		return err
	})
	g.Go(func() error {
		hidden, hiddenErr = s.deps.Preferences.Load(gctx, s.viewerID)
		return nil
	})
	fetchErr := g.Wait()

	var (
		deleted  []string
		likes    map[string]models.Reaction
		degraded bool
	)
	if fetchErr == nil {
		records, deleted = splitDeleted(records)
		likes, degraded = s.likes.Load(ctx, tree.Build(records).IDs(), s.viewerID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || scope != s.scope {
		metrics.Fetches.WithLabelValues("stale").Inc()
		lg.Info("fetch result discarded: scope changed")
		return wrap(op, ErrClosed)
	}

	if !initial {
		s.fetching--
	}

	if fetchErr != nil {
		metrics.Fetches.WithLabelValues("error").Inc()
		kind := classify(fetchErr)
		lg.Warn("fetch comments failed", "err", fetchErr)

		if initial {
			s.state = StateError
			s.lastErr = kind
		} else {
			s.advisory = "refresh failed: " + fetchErr.Error()
			s.settleLocked()
		}
		s.rebuildLocked("error")

		return wrap(op, kind)
	}

	if s.versioned() && seq < s.fetchSeq {
		metrics.Fetches.WithLabelValues("stale").Inc()
		lg.Info("out-of-order fetch discarded", "applied_seq", s.fetchSeq)
		s.settleLocked()
		s.rebuildLocked(trigger)
		return nil
	}

	metrics.Fetches.WithLabelValues("ok").Inc()
	if hiddenErr != nil {
		lg.Warn("hidden lists unavailable, keeping previous set", "err", hiddenErr)
	}

	s.applyLocked(seq, fetched{
		records:  records,
		deleted:  deleted,
		total:    total,
		likes:    likes,
		degraded: degraded,
		hidden:   hidden,
		hiddenOK: hiddenErr == nil,
	})
	if initial {
		s.state = StateReady
	}
	s.settleLocked()
	s.rebuildLocked(trigger)

	return nil
}

// settleLocked возвращает READY, когда не осталось загрузок в полёте.
func (s *Session) settleLocked() {
	if s.state == StateRefreshing && s.fetching <= 0 {
		s.fetching = 0
		s.state = StateReady
	}
}

// fetched — результат одной загрузки области.
type fetched struct {
	records  []models.Comment
	deleted  []string
	total    int
	likes    map[string]models.Reaction
	degraded bool
	hidden   moderation.Set
	hiddenOK bool
}

// splitDeleted отделяет маркеры удалённых записей от живых.
func splitDeleted(records []models.Comment) ([]models.Comment, []string) {
	live := make([]models.Comment, 0, len(records))
	var deleted []string
	for _, rec := range records {
		if rec.Deleted {
			deleted = append(deleted, rec.ID)
			continue
		}
		live = append(live, rec)
	}

	return live, deleted
}

// applyLocked переносит результат загрузки в авторитетное состояние сессии.
func (s *Session) applyLocked(seq uint64, res fetched) {
	s.fetchSeq = seq
	s.records = res.records
	s.total = max(res.total, len(res.records))
	s.advisory = ""
	if res.degraded {
		s.advisory = "reactions unavailable"
	}

	for _, id := range res.deleted {
		s.tombstones.Add(id)
	}

	nextReactions := make(map[string]models.Reaction, len(res.likes))
	nextVer := make(map[string]uint64, len(res.likes))
	for id, r := range res.likes {
		cur, known := s.reactions[id]
		keep := false
		switch {
		case s.versioned() && s.pendingLocked(mutationKey{target: id, op: opReaction}):
			keep = true
		case s.versioned() && s.reactionVer[id] > seq:
			keep = true
		case res.degraded && known:
			keep = true
		}

		if keep {
			nextReactions[id] = cur
			nextVer[id] = s.reactionVer[id]
			continue
		}

		nextReactions[id] = r
		nextVer[id] = seq
	}
	s.reactions = nextReactions
	s.reactionVer = nextVer

	if res.hiddenOK && (!s.versioned() || seq > s.hiddenVer) {
		s.hidden = res.hidden
	}

	// Подтверждённый временный узел уходит, как только загрузка принесла его настоящую
	// запись, даже если загрузка началась раньше подтверждения: иначе он задвоится.
	present := moderation.NewSet(res.deleted)
	for _, rec := range res.records {
		present.Add(rec.ID)
	}
	kept := s.transients[:0]
	for _, t := range s.transients {
		if t.confirmed && (!s.versioned() || t.confirmSeq < seq || present.Has(t.realID)) {
			continue
		}
		kept = append(kept, t)
	}
	s.transients = kept

	if s.viewed == nil {
		s.viewed = moderation.Set{}
		for _, rec := range res.records {
			s.viewed.Add(rec.ID)
		}
	}
}

// rebuildLocked заново строит лес из плоского источника и публикует новый снимок.
func (s *Session) rebuildLocked(trigger string) {
	start := time.Now()

	flat := make([]models.Comment, 0, len(s.records)+len(s.transients))
	flat = append(flat, s.records...)
	for _, t := range s.transients {
		flat = append(flat, t.rec)
	}

	f := tree.Build(flat)
	res := moderation.Apply(f, moderation.Options{
		Hidden:        s.hidden,
		Tombstones:    s.tombstones,
		Collapsed:     s.collapsed,
		DeletedParent: s.opts.DeletedParent,
		Placeholders:  s.opts.Placeholders,
		Decorate:      s.decorateLocked,
	})

	advisory := s.advisory
	if advisory == "" && s.liveOff {
		advisory = liveOffAdvisory
	}
	if s.state == StateError && s.lastErr != nil {
		advisory = s.lastErr.Error()
	}

	roots := res.Roots
	if roots == nil {
		roots = []*models.Node{}
	}

	s.version++
	s.view = &models.View{
		SessionID:        s.id,
		ContentID:        s.contentID,
		State:            string(s.state),
		Roots:            roots,
		Total:            s.total + s.unconfirmedLocked(),
		Visible:          res.Visible,
		Dropped:          f.Dropped,
		Version:          s.version,
		AutoHideOnReport: s.autoHide,
		Advisory:         advisory,
		BuiltAt:          s.now().UTC(),
	}

	metrics.Rebuilds.WithLabelValues(trigger).Inc()
	metrics.RebuildDuration.Observe(time.Since(start).Seconds())

	s.publishLocked(s.view)
}

func (s *Session) decorateLocked(n *models.Node) {
	n.Reaction = s.reactions[n.ID]
	n.Pending = n.IsTemporary() || s.pendingLocked(mutationKey{target: n.ID, op: opReaction})
	n.Fresh = s.viewed != nil && !n.IsTemporary() && n.AuthorID != s.viewerID && !s.viewed.Has(n.ID)
	if s.deps.Renderer != nil {
		n.BodyHTML = s.deps.Renderer.Body(n.Body)
	}
	n.ComputeKey()
}

func (s *Session) unconfirmedLocked() int {
	n := 0
	for _, t := range s.transients {
		if !t.confirmed {
			n++
		}
	}

	return n
}

func (s *Session) pendingLocked(key mutationKey) bool {
	_, ok := s.inflight[key]
	return ok
}

func (s *Session) versioned() bool {
	return s.opts.Consistency != ConsistencyArrival
}

func (s *Session) nextSeqLocked() uint64 {
	s.seq++
	return s.seq
}

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

func uintKey(v uint64) string {
	return strconv.FormatUint(v, 10)
}
