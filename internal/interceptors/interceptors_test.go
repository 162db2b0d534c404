package interceptors

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/pribylovaa/discussion-service/internal/pkg/log"
)

// capHandler — slog.Handler, запоминающий последнюю запись и счётчик сообщений.
type capHandler struct {
	mu      sync.Mutex
	base    []slog.Attr
	lastMsg string
	lastLvl slog.Level
	attrs   map[string]any
	count   map[string]int
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]any, len(h.base)+8)
	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})
	if h.count == nil {
		h.count = make(map[string]int)
	}
	h.count[r.Message]++
	h.lastMsg = r.Message
	h.lastLvl = r.Level
	h.attrs = out

	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.base = append(h.base, attrs...)
	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

var healthCheck = &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

func TestLogging_RequestIDFromMetadata(t *testing.T) {
	h := &capHandler{}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(requestIDKey, "rid-1"))
	ctx = peer.NewContext(ctx, &peer.Peer{Addr: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 50055}})

	resp, err := Logging(slog.New(h))(ctx, "req", healthCheck, func(ctx context.Context, req any) (any, error) {
		log.From(ctx).Info("handler")
		return "ok", nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok", resp)

	require.Equal(t, 1, h.count["handler"])
	require.Equal(t, "grpc", h.lastMsg)
	require.Equal(t, "rid-1", h.attrs["request_id"])
	require.Equal(t, healthCheck.FullMethod, h.attrs["method"])
	require.Equal(t, "127.0.0.1:50055", h.attrs["peer"])
	require.Equal(t, "OK", h.attrs["code"])
}

func TestLogging_GeneratesRequestID_AndLogsCode(t *testing.T) {
	h := &capHandler{}

	_, err := Logging(slog.New(h))(context.Background(), "req", healthCheck, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.NotFound, "unknown service")
	})
	require.Error(t, err)

	require.Equal(t, "NotFound", h.attrs["code"])
	require.Equal(t, "-", h.attrs["peer"])

	rid, _ := h.attrs["request_id"].(string)
	_, parseErr := uuid.Parse(rid)
	require.NoError(t, parseErr)
}

func TestRecover_PanicToInternal(t *testing.T) {
	h := &capHandler{}

	resp, err := Recover(slog.New(h))(context.Background(), "req", healthCheck, func(ctx context.Context, req any) (any, error) {
		panic("boom")
	})
	require.Nil(t, resp)
	require.Equal(t, codes.Internal, status.Code(err))

	require.Equal(t, slog.LevelError, h.lastLvl)
	require.Equal(t, "panic_recovered", h.lastMsg)
	require.Equal(t, healthCheck.FullMethod, h.attrs["method"])
	require.NotEmpty(t, h.attrs["stack"])
}

func TestRecover_NoPanic_NoLogs(t *testing.T) {
	h := &capHandler{}

	resp, err := Recover(slog.New(h))(context.Background(), "req", healthCheck, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	require.Equal(t, "ok", resp)
	require.Empty(t, h.lastMsg)
}

func TestTimeout(t *testing.T) {
	t.Run("sets deadline", func(t *testing.T) {
		_, err := Timeout(20*time.Millisecond)(context.Background(), "req", healthCheck, func(ctx context.Context, req any) (any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("keeps existing deadline", func(t *testing.T) {
		parent, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
		defer cancel()
		want, _ := parent.Deadline()

		_, err := Timeout(time.Second)(parent, "req", healthCheck, func(ctx context.Context, req any) (any, error) {
			got, ok := ctx.Deadline()
			require.True(t, ok)
			require.WithinDuration(t, want, got, time.Millisecond)
			return "ok", nil
		})
		require.NoError(t, err)
	})

	t.Run("zero is no-op", func(t *testing.T) {
		_, err := Timeout(0)(context.Background(), "req", healthCheck, func(ctx context.Context, req any) (any, error) {
			_, ok := ctx.Deadline()
			require.False(t, ok)
			return "ok", nil
		})
		require.NoError(t, err)
	})
}
