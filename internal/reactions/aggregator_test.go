package reactions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/discussion-service/internal/models"
)

// sourceFunc — адаптер функции к Source.
type sourceFunc func(ctx context.Context, ids []string) ([]models.LikeEdge, error)

func (f sourceFunc) LikesFor(ctx context.Context, ids []string) ([]models.LikeEdge, error) {
	return f(ctx, ids)
}

// 3 ребра на X, включая зрителя -> {3, true}; без ребра зрителя -> {2, false}.
func TestAggregate_ViewerEdge(t *testing.T) {
	edges := []models.LikeEdge{
		{CommentID: "X", UserID: "u1"},
		{CommentID: "X", UserID: "u2"},
		{CommentID: "X", UserID: "u3"},
	}

	got := Aggregate(edges, []string{"X"}, "u1")
	require.Equal(t, models.Reaction{Count: 3, ViewerLiked: true}, got["X"])

	got = Aggregate(edges[1:], []string{"X"}, "u1")
	require.Equal(t, models.Reaction{Count: 2, ViewerLiked: false}, got["X"])
}

// Рёбра вне набора ids игнорируются, дубли считаются один раз, пустой зритель не «лайкает».
func TestAggregate_ScopeAndDuplicates(t *testing.T) {
	edges := []models.LikeEdge{
		{CommentID: "a", UserID: "u1"},
		{CommentID: "a", UserID: "u1"},
		{CommentID: "b", UserID: ""},
		{CommentID: "zz", UserID: "u1"},
	}

	got := Aggregate(edges, []string{"a", "b"}, "")
	require.Equal(t, map[string]models.Reaction{
		"a": {Count: 1},
		"b": {},
	}, got)
}

// Сбой источника -> нулевые счётчики и признак деградации.
func TestAggregator_Load_DegradesOnError(t *testing.T) {
	a := New(sourceFunc(func(context.Context, []string) ([]models.LikeEdge, error) {
		return nil, errors.New("likes down")
	}), time.Second)

	got, degraded := a.Load(context.Background(), []string{"a", "b"}, "u1")
	require.True(t, degraded)
	require.Equal(t, Zero([]string{"a", "b"}), got)
}

// Медленный источник обрезается таймаутом и не блокирует конвейер.
func TestAggregator_Load_TimeoutDoesNotBlock(t *testing.T) {
	a := New(sourceFunc(func(ctx context.Context, _ []string) ([]models.LikeEdge, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), 20*time.Millisecond)

	start := time.Now()
	got, degraded := a.Load(context.Background(), []string{"a"}, "u1")
	require.True(t, degraded)
	require.Less(t, time.Since(start), time.Second)
	require.Equal(t, models.Reaction{}, got["a"])
}

// Отсутствующий источник — тоже деградация, без паники.
func TestAggregator_Load_NilSource(t *testing.T) {
	got, degraded := New(nil, 0).Load(context.Background(), []string{"a"}, "")
	require.True(t, degraded)
	require.Contains(t, got, "a")
}

// Пустой набор ids — источник не вызывается.
func TestAggregator_Load_EmptyIDs(t *testing.T) {
	a := New(sourceFunc(func(context.Context, []string) ([]models.LikeEdge, error) {
		t.Fatal("источник не должен вызываться")
		return nil, nil
	}), 0)

	got, degraded := a.Load(context.Background(), nil, "u1")
	require.False(t, degraded)
	require.Empty(t, got)
}

// Happy-path: агрегаты из источника.
func TestAggregator_Load_OK(t *testing.T) {
	a := New(sourceFunc(func(_ context.Context, ids []string) ([]models.LikeEdge, error) {
		require.ElementsMatch(t, []string{"a", "b"}, ids)
		return []models.LikeEdge{{CommentID: "b", UserID: "u1"}}, nil
	}), time.Second)

	got, degraded := a.Load(context.Background(), []string{"a", "b"}, "u1")
	require.False(t, degraded)
	require.Equal(t, models.Reaction{Count: 1, ViewerLiked: true}, got["b"])
	require.Equal(t, models.Reaction{}, got["a"])
}
