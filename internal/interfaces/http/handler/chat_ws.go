package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tradepost/backend/internal/infrastructure/logger"
	"github.com/tradepost/backend/internal/interfaces/chat"
	"github.com/tradepost/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// WebSocket timeouts
const (
	wsWriteTimeout = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsMaxFrame     = 16 << 10
)

// ChatWSHandler is the WebSocket transport for the chat dispatcher. Each text
// frame carries one ChatFrame; each reply goes back as one response envelope.
type ChatWSHandler struct {
	BaseHandler
	dispatcher ChatDispatcher
	upgrader   websocket.Upgrader
}

// ChatWSOption configures a ChatWSHandler
type ChatWSOption func(*ChatWSHandler)

// WithCheckOrigin replaces the same-origin check done during the handshake
func WithCheckOrigin(check func(r *http.Request) bool) ChatWSOption {
	return func(h *ChatWSHandler) {
		h.upgrader.CheckOrigin = check
	}
}

// NewChatWSHandler creates a new ChatWSHandler
func NewChatWSHandler(dispatcher ChatDispatcher, opts ...ChatWSOption) *ChatWSHandler {
	h := &ChatWSHandler{
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Serve godoc
// @ID           chatWebSocket
// @Summary      Chat over WebSocket
// @Description  Upgrades to a WebSocket. Every frame is a chat event from the sender named in the query; every answer is a response envelope carrying the reply.
// @Tags         chat
// @Param        external_id query string true "Sender external id"
// @Param        handle query string false "Sender handle"
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     WebhookToken
// @Router       /chat/ws [get]
func (h *ChatWSHandler) Serve(c *gin.Context) {
	sender := chat.Sender{
		ExternalID: c.Query("external_id"),
		Handle:     c.Query("handle"),
	}
	if sender.ExternalID == "" {
		h.BadRequest(c, "external_id is required")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already answered the client
		logger.L(c.Request.Context()).Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	ctx = logger.WithSender(ctx, sender.ExternalID)
	log := logger.L(ctx)
	log.Info("WebSocket connected")

	s := &wsSession{conn: conn}
	go s.pingLoop(ctx)

	conn.SetReadLimit(wsMaxFrame)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("WebSocket read failed", zap.Error(err))
			} else {
				log.Info("WebSocket disconnected")
			}
			return
		}

		resp := h.handleFrame(ctx, sender, data)
		if err := s.writeJSON(resp); err != nil {
			log.Warn("WebSocket write failed", zap.Error(err))
			return
		}
	}
}

func (h *ChatWSHandler) handleFrame(ctx context.Context, sender chat.Sender, data []byte) dto.Response {
	var frame ChatFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return dto.NewErrorResponse(dto.ErrCodeInvalidJSON, "Frame is not valid JSON")
	}
	ev, ok := frame.event()
	if !ok {
		return dto.NewErrorResponse(dto.ErrCodeInvalidInput, "Unknown event kind")
	}
	reply := h.dispatcher.Dispatch(ctx, chat.Inbound{Sender: sender, Event: ev})
	return dto.NewSuccessResponse(reply)
}

// wsSession serializes writes; gorilla connections allow one concurrent writer
type wsSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *wsSession) writeJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return s.conn.WriteJSON(v)
}

func (s *wsSession) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout))
			s.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
