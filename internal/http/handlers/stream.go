package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pribylovaa/discussion-service/internal/pkg/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// upgrader — Origin проверяет апстрим-шлюз, сюда запросы приходят уже аутентифицированными.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Stream — GET /sessions/{id}/stream. Отправляет каждый новый снимок сессии как JSON-кадр.
// Медленный клиент получает только последний снимок. Закрытие сессии закрывает соединение.
func (h *Handlers) Stream(w http.ResponseWriter, r *http.Request) {
	const op = "http/handlers/Stream"

	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	lg := log.From(r.Context()).With("op", op, "session_id", sess.ID())

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту.
		lg.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer ws.Close()

	views, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	// Чтение нужно только для pong и обнаружения закрытия со стороны клиента.
	gone := make(chan struct{})
	go func() {
		defer close(gone)

		ws.SetReadLimit(512)
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(pongWait))
		})

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case v, ok := <-views:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}

			if err := ws.WriteJSON(v); err != nil {
				lg.Warn("write view failed", "err", err)
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-gone:
			return
		case <-r.Context().Done():
			return
		}
	}
}
