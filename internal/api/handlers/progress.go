package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// progressWriteTimeout bounds one broadcast write per subscriber.
const progressWriteTimeout = 5 * time.Second

// ProgressHub fans collection progress events out to websocket
// subscribers. Implements contracts.ProgressPublisher.
// ⭐ SSOT: 진행률 브로드캐스트는 여기서만. 구독자가 없으면 이벤트는 버려진다.
type ProgressHub struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewProgressHub creates an empty hub
func NewProgressHub(log *logger.Logger) *ProgressHub {
	return &ProgressHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 프론트엔드 대시보드 전용 엔드포인트라 origin 제한 없음
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  log.WithField("module", "progress"),
		clients: make(map[*websocket.Conn]bool),
	}
}

// Subscribe upgrades the request and keeps the connection registered
// until the client closes it
// GET /api/v2/indicators/progress (websocket)
func (h *ProgressHub) Subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.WithField("subscribers", count).Debug("Progress subscriber connected")

	// 수신 루프는 연결 종료 감지 전용. 클라이언트가 보내는 내용은 버린다.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Publish broadcasts one progress event. Subscribers that cannot be
// written to are dropped.
func (h *ProgressHub) Publish(p contracts.FetchProgress) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(progressWriteTimeout))
		if err := conn.WriteJSON(p); err != nil {
			h.logger.WithError(err).Debug("Dropping stale progress subscriber")
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Subscribers returns the current subscriber count
func (h *ProgressHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *ProgressHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[conn] {
		delete(h.clients, conn)
		conn.Close()
	}
}
