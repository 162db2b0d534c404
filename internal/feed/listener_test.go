package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/discussion-service/internal/models"
	"github.com/pribylovaa/discussion-service/internal/storage"
	"github.com/pribylovaa/discussion-service/mocks"
)

// recorder — потокобезопасный сборщик триггеров.
type recorder struct {
	mu      sync.Mutex
	batches [][]models.FeedEvent
	scopes  []uint64
	fired   chan struct{}
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan struct{}, 16)}
}

func (r *recorder) trigger(scope uint64, batch []models.FeedEvent) {
	r.mu.Lock()
	r.batches = append(r.batches, batch)
	r.scopes = append(r.scopes, scope)
	r.mu.Unlock()
	r.fired <- struct{}{}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

// subscribeCapturing — ожидание подписки с сохранением обработчика событий.
func subscribeCapturing(feed *mocks.MockFeed, sub *mocks.MockSubscription, contentID string) *func(models.FeedEvent) {
	var handler func(models.FeedEvent)
	feed.EXPECT().
		SubscribeToChanges(gomock.Any(), contentID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, onEvent func(models.FeedEvent)) (storage.Subscription, error) {
			handler = onEvent
			return sub, nil
		})
	return &handler
}

// Серия событий схлопывается в один триггер после паузы.
func TestListener_DebouncesBurst(t *testing.T) {
	ctrl := gomock.NewController(t)
	feed := mocks.NewMockFeed(ctrl)
	sub := mocks.NewMockSubscription(ctrl)
	h := subscribeCapturing(feed, sub, "p1")
	sub.EXPECT().Unsubscribe().Return(nil)

	rec := newRecorder()
	l := New(feed, 30*time.Millisecond)
	require.NoError(t, l.Start(context.Background(), "p1", 7, rec.trigger))
	require.True(t, l.Active())

	for i := 0; i < 5; i++ {
		(*h)(models.FeedEvent{ContentID: "p1", Kind: models.FeedReactionChanged})
	}

	select {
	case <-rec.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("ожидали триггер")
	}

	time.Sleep(60 * time.Millisecond)
	require.Equal(t, 1, rec.count())
	require.Len(t, rec.batches[0], 5)
	require.Equal(t, uint64(7), rec.scopes[0])

	l.Stop()
	require.False(t, l.Active())
}

// События чужой области и события после Stop не приводят к триггеру.
func TestListener_IgnoresForeignAndStaleEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	feed := mocks.NewMockFeed(ctrl)
	sub := mocks.NewMockSubscription(ctrl)
	h := subscribeCapturing(feed, sub, "p1")
	sub.EXPECT().Unsubscribe().Return(nil)

	rec := newRecorder()
	l := New(feed, 10*time.Millisecond)
	require.NoError(t, l.Start(context.Background(), "p1", 1, rec.trigger))

	(*h)(models.FeedEvent{ContentID: "p2", Kind: models.FeedCommentCreated})
	l.Stop()
	(*h)(models.FeedEvent{ContentID: "p1", Kind: models.FeedCommentCreated})

	time.Sleep(50 * time.Millisecond)
	require.Zero(t, rec.count())
}

// Смена области: старая подписка снимается, новая получает свой токен.
func TestListener_RestartSwitchesScope(t *testing.T) {
	ctrl := gomock.NewController(t)
	feed := mocks.NewMockFeed(ctrl)
	sub1 := mocks.NewMockSubscription(ctrl)
	sub2 := mocks.NewMockSubscription(ctrl)

	h1 := subscribeCapturing(feed, sub1, "p1")
	h2 := subscribeCapturing(feed, sub2, "p2")
	sub1.EXPECT().Unsubscribe().Return(nil)
	sub2.EXPECT().Unsubscribe().Return(nil)

	rec := newRecorder()
	l := New(feed, 5*time.Millisecond)
	require.NoError(t, l.Start(context.Background(), "p1", 1, rec.trigger))
	require.NoError(t, l.Start(context.Background(), "p2", 2, rec.trigger))

	(*h1)(models.FeedEvent{ContentID: "p1", Kind: models.FeedCommentCreated})
	(*h2)(models.FeedEvent{ContentID: "p2", Kind: models.FeedCommentDeleted, CommentID: "c9"})

	select {
	case <-rec.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("ожидали триггер")
	}
	time.Sleep(30 * time.Millisecond)

	require.Equal(t, 1, rec.count())
	require.Equal(t, uint64(2), rec.scopes[0])
	require.Equal(t, "c9", rec.batches[0][0].CommentID)
	l.Stop()
}

// Ошибка подписки возвращается, но не паникует и оставляет Listener неактивным.
func TestListener_SubscribeFailureDegrades(t *testing.T) {
	ctrl := gomock.NewController(t)
	feed := mocks.NewMockFeed(ctrl)
	feed.EXPECT().SubscribeToChanges(gomock.Any(), "p1", gomock.Any()).Return(nil, errors.New("no replica set"))

	l := New(feed, time.Millisecond)
	require.Error(t, l.Start(context.Background(), "p1", 1, func(uint64, []models.FeedEvent) {}))
	require.False(t, l.Active())

	require.Error(t, New(nil, 0).Start(context.Background(), "p1", 1, nil))
}

// blockingSubscribe — подписка, которая отвечает только после release.
func blockingSubscribe(feed *mocks.MockFeed, sub *mocks.MockSubscription, contentID string) (handler *func(models.FeedEvent), entered, release chan struct{}) {
	var h func(models.FeedEvent)
	entered = make(chan struct{})
	release = make(chan struct{})
	feed.EXPECT().
		SubscribeToChanges(gomock.Any(), contentID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, onEvent func(models.FeedEvent)) (storage.Subscription, error) {
			h = onEvent
			close(entered)
			<-release
			return sub, nil
		})
	return &h, entered, release
}

func startAsync(l *Listener, contentID string, scope uint64, trigger TriggerFunc) <-chan error {
	done := make(chan error, 1)
	go func() { done <- l.Start(context.Background(), contentID, scope, trigger) }()
	return done
}

func waitStart(t *testing.T, done <-chan error) {
	t.Helper()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start не завершился")
	}
}

// Close во время подписки: подписка, пришедшая после Close, сразу снимается.
func TestListener_CloseDuringSubscribe(t *testing.T) {
	ctrl := gomock.NewController(t)
	feed := mocks.NewMockFeed(ctrl)
	sub := mocks.NewMockSubscription(ctrl)
	_, entered, release := blockingSubscribe(feed, sub, "p1")
	sub.EXPECT().Unsubscribe().Return(nil).Times(1)

	rec := newRecorder()
	l := New(feed, time.Millisecond)
	done := startAsync(l, "p1", 1, rec.trigger)
	<-entered

	l.Close()
	close(release)
	waitStart(t, done)
	require.False(t, l.Active())

	// После Close новых подписок нет.
	require.NoError(t, l.Start(context.Background(), "p1", 2, rec.trigger))
	require.False(t, l.Active())
}

// Снятие подписки, которое дожидается доставки события (как change stream), не блокирует Start.
func TestListener_UnsubscribeWithInflightEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	feed := mocks.NewMockFeed(ctrl)
	sub := mocks.NewMockSubscription(ctrl)
	h, entered, release := blockingSubscribe(feed, sub, "p1")
	sub.EXPECT().Unsubscribe().DoAndReturn(func() error {
		delivered := make(chan struct{})
		go func() {
			(*h)(models.FeedEvent{ContentID: "p1", Kind: models.FeedCommentCreated})
			close(delivered)
		}()
		<-delivered
		return nil
	})

	rec := newRecorder()
	l := New(feed, time.Millisecond)
	done := startAsync(l, "p1", 1, rec.trigger)
	<-entered

	l.Stop()
	close(release)
	waitStart(t, done)

	time.Sleep(20 * time.Millisecond)
	require.False(t, l.Active())
	require.Zero(t, rec.count())
}

// Запоздавший Start со старым токеном области не перебивает новый.
func TestListener_IgnoresOlderScope(t *testing.T) {
	ctrl := gomock.NewController(t)
	feed := mocks.NewMockFeed(ctrl)
	sub := mocks.NewMockSubscription(ctrl)
	subscribeCapturing(feed, sub, "p2")
	sub.EXPECT().Unsubscribe().Return(nil)

	rec := newRecorder()
	l := New(feed, time.Millisecond)
	require.NoError(t, l.Start(context.Background(), "p2", 2, rec.trigger))
	require.NoError(t, l.Start(context.Background(), "p1", 1, rec.trigger))
	require.True(t, l.Active())

	l.Close()
	require.False(t, l.Active())
}
