package moderation

// Тесты Preferences поверх gomock-моков storage.HiddenCache / storage.Moderation.
//
//   mockgen -source=./internal/storage/storage.go -destination=./mocks/storage.go -package=mocks

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

func newPrefsWithMocks(t *testing.T) (*Preferences, *mocks.MockHiddenCache, *mocks.MockModeration) {
	t.Helper()
	ctrl := gomock.NewController(t)
	local := mocks.NewMockHiddenCache(ctrl)
	remote := mocks.NewMockModeration(ctrl)
	return NewPreferences(local, remote), local, remote
}

// Load — объединение локального и удалённого списков без дублей + write-back в кеш.
func TestPreferences_Load_Union(t *testing.T) {
	p, local, remote := newPrefsWithMocks(t)
	ctx := context.Background()

	local.EXPECT().Load(gomock.Any(), "u1").Return([]string{"a", "b"}, nil)
	remote.EXPECT().Hidden(gomock.Any(), "u1").Return([]string{"b", "c"}, nil)
	local.EXPECT().Store(gomock.Any(), "u1", []string{"a", "b", "c"}).Return(nil)

	got, err := p.Load(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, got.Slice())
}

// Сбой одного источника не фатален.
func TestPreferences_Load_RemoteDown(t *testing.T) {
	p, local, remote := newPrefsWithMocks(t)

	local.EXPECT().Load(gomock.Any(), "u1").Return([]string{"a"}, nil)
	remote.EXPECT().Hidden(gomock.Any(), "u1").Return(nil, errors.New("net"))

	got, err := p.Load(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, got.Slice())
}

// Оба источника недоступны — ошибка, но пустое множество пригодно к использованию.
func TestPreferences_Load_BothDown(t *testing.T) {
	p, local, remote := newPrefsWithMocks(t)

	local.EXPECT().Load(gomock.Any(), "u1").Return(nil, errors.New("disk"))
	remote.EXPECT().Hidden(gomock.Any(), "u1").Return(nil, errors.New("net"))

	got, err := p.Load(context.Background(), "u1")
	require.Error(t, err)
	require.Empty(t, got)
}

// Анонимный зритель — пустое множество без обращения к хранилищам.
func TestPreferences_Load_Anonymous(t *testing.T) {
	p, _, _ := newPrefsWithMocks(t)

	got, err := p.Load(context.Background(), " ")
	require.NoError(t, err)
	require.Empty(t, got)
}

// Hide: локальная запись + best-effort удалённая; сбой удалённой не возвращается.
func TestPreferences_Hide_RemoteBestEffort(t *testing.T) {
	p, local, remote := newPrefsWithMocks(t)

	local.EXPECT().Load(gomock.Any(), "u1").Return([]string{"a"}, nil)
	remote.EXPECT().Hidden(gomock.Any(), "u1").Return([]string{"a"}, nil)
	local.EXPECT().Store(gomock.Any(), "u1", []string{"a", "x"}).Return(nil)
	remote.EXPECT().SetHidden(gomock.Any(), "u1", []string{"a", "x"}).Return(errors.New("net"))

	got, err := p.Hide(context.Background(), "u1", "x")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "x"}, got.Slice())
}

// Unhide убирает id из обоих списков.
func TestPreferences_Unhide(t *testing.T) {
	p, local, remote := newPrefsWithMocks(t)

	local.EXPECT().Load(gomock.Any(), "u1").Return([]string{"a", "x"}, nil)
	remote.EXPECT().Hidden(gomock.Any(), "u1").Return([]string{"x"}, nil)
	local.EXPECT().Store(gomock.Any(), "u1", []string{"a"}).Return(nil)
	remote.EXPECT().SetHidden(gomock.Any(), "u1", []string{"a"}).Return(nil)

	got, err := p.Unhide(context.Background(), "u1", "x")
	require.NoError(t, err)
	require.False(t, got.Has("x"))
}

// Hide без зрителя / без id — ошибки без обращения к хранилищам.
func TestPreferences_Hide_Validation(t *testing.T) {
	p, _, _ := newPrefsWithMocks(t)

	_, err := p.Hide(context.Background(), "", "x")
	require.ErrorIs(t, err, storage.ErrUnauthenticated)

	_, err = p.Hide(context.Background(), "u1", " ")
	require.ErrorIs(t, err, storage.ErrInvalidArgument)
}

// Report: валидация причины, заполнение created_at, проброс ошибок хранилища.
func TestPreferences_Report(t *testing.T) {
	p, _, remote := newPrefsWithMocks(t)
	ctx := context.Background()

	_, err := p.Report(ctx, models.Report{TargetID: "c1", ReporterID: "u1", Reason: "because"})
	require.ErrorIs(t, err, storage.ErrInvalidArgument)

	_, err = p.Report(ctx, models.Report{TargetID: "c1", Reason: models.ReasonSpam})
	require.ErrorIs(t, err, storage.ErrUnauthenticated)

	remote.EXPECT().
		ReportContent(gomock.Any(), gomock.AssignableToTypeOf(models.Report{})).
		DoAndReturn(func(_ context.Context, r models.Report) (*models.Report, error) {
			require.Equal(t, "c1", r.TargetID)
			require.Equal(t, "details", r.Details)
			require.False(t, r.CreatedAt.IsZero())
			r.ID = "rep1"
			return &r, nil
		})

	out, err := p.Report(ctx, models.Report{TargetID: " c1 ", ReporterID: "u1", Reason: models.ReasonSpam, Details: " details "})
	require.NoError(t, err)
	require.Equal(t, "rep1", out.ID)

	remote.EXPECT().ReportContent(gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound)
	_, err = p.Report(ctx, models.Report{TargetID: "gone", ReporterID: "u1", Reason: models.ReasonOther})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// Параллельные Hide одного зрителя не затирают друг друга при полной перезаписи списка.
func TestPreferences_Hide_ConcurrentSameViewer(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mocks.NewMockModeration(ctrl)
	p := NewPreferences(nil, remote)

	var (
		mu     sync.Mutex
		stored []string
	)
	remote.EXPECT().Hidden(gomock.Any(), "u1").DoAndReturn(func(context.Context, string) ([]string, error) {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), stored...), nil
	}).Times(2)

	entered := make(chan struct{})
	release := make(chan struct{})
	remote.EXPECT().SetHidden(gomock.Any(), "u1", []string{"a"}).DoAndReturn(func(_ context.Context, _ string, ids []string) error {
		close(entered)
		<-release
		mu.Lock()
		stored = ids
		mu.Unlock()
		return nil
	})
	remote.EXPECT().SetHidden(gomock.Any(), "u1", []string{"a", "b"}).DoAndReturn(func(_ context.Context, _ string, ids []string) error {
		mu.Lock()
		stored = ids
		mu.Unlock()
		return nil
	})

	first := make(chan error, 1)
	go func() {
		_, err := p.Hide(context.Background(), "u1", "a")
		first <- err
	}()
	<-entered

	second := make(chan Set, 1)
	go func() {
		got, _ := p.Hide(context.Background(), "u1", "b")
		second <- got
	}()

	// Второй Hide должен дождаться записи первого.
	time.Sleep(20 * time.Millisecond)
	close(release)

	require.NoError(t, <-first)
	require.Equal(t, []string{"a", "b"}, (<-second).Slice())

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"a", "b"}, stored)
	require.Empty(t, p.locks)
}
