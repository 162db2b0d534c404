// Package reactions сворачивает плоские рёбра лайков в {count, viewerLiked} по комментарию.
package reactions

import (
	"context"
	"time"

	"github.com/pribylovaa/discussion-service/internal/metrics"
	"github.com/pribylovaa/discussion-service/internal/models"
	"github.com/pribylovaa/discussion-service/internal/pkg/log"
)

// Source — источник рёбер лайков.
type Source interface {
	LikesFor(ctx context.Context, commentIDs []string) ([]models.LikeEdge, error)
}

// Aggregate считает реакции для набора ids.
//   - рёбра вне ids игнорируются;
//   - повторное ребро (comment, user) учитывается один раз;
//   - каждый id из набора присутствует в результате (нулевой агрегат, если лайков нет).
func Aggregate(edges []models.LikeEdge, ids []string, viewerID string) map[string]models.Reaction {
	out := Zero(ids)

	seen := make(map[models.LikeEdge]struct{}, len(edges))
	for _, e := range edges {
		r, ok := out[e.CommentID]
		if !ok || e.UserID == "" {
			continue
		}

		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}

		r.Count++
		if viewerID != "" && e.UserID == viewerID {
			r.ViewerLiked = true
		}
		out[e.CommentID] = r
	}

	return out
}

// Zero — нулевые агрегаты для всех ids.
func Zero(ids []string) map[string]models.Reaction {
	out := make(map[string]models.Reaction, len(ids))
	for _, id := range ids {
		out[id] = models.Reaction{}
	}

	return out
}

// Aggregator загружает рёбра из Source с ограничением по времени и агрегирует их.
// Недоступный или медленный источник не валит конвейер: возвращаются нулевые счётчики.
type Aggregator struct {
	src     Source
	timeout time.Duration
}

// New создаёт Aggregator. timeout <= 0 — без собственного дедлайна.
func New(src Source, timeout time.Duration) *Aggregator {
	return &Aggregator{src: src, timeout: timeout}
}

// Load возвращает агрегаты и признак деградации (true — счётчики нулевые из-за сбоя источника).
func (a *Aggregator) Load(ctx context.Context, ids []string, viewerID string) (map[string]models.Reaction, bool) {
	const op = "reactions/Aggregator/Load"

	if len(ids) == 0 {
		return map[string]models.Reaction{}, false
	}

	if a == nil || a.src == nil {
		metrics.ReactionsDegraded.Inc()
		return Zero(ids), true
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	edges, err := a.src.LikesFor(ctx, ids)
	if err != nil {
		log.From(ctx).Warn("likes unavailable, falling back to zero counts",
			"op", op, "ids", len(ids), "err", err)
		metrics.ReactionsDegraded.Inc()
		return Zero(ids), true
	}

	return Aggregate(edges, ids, viewerID), false
}
