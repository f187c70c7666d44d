package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/interface/dto"
	"travel-booking-service/internal/interface/middleware"
	"travel-booking-service/internal/interface/response"
	"travel-booking-service/internal/usecase"
	"travel-booking-service/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Stream message types
const (
	StreamSnapshot = "snapshot"
	StreamError    = "error"
)

// StreamMessage is one frame pushed to booking stream clients
type StreamMessage struct {
	Type     string            `json:"type"`
	Bookings []*entity.Booking `json:"bookings,omitempty"`
	Error    string            `json:"error,omitempty"`
	At       string            `json:"at"`
}

// BookingStreamHandler pushes the caller's bookings over a WebSocket every time they change
type BookingStreamHandler struct {
	bookings *usecase.BookingService
	upgrader websocket.Upgrader
	logger   logger.Logger
}

// NewBookingStreamHandler accepts connections from allowedOrigins; an empty list accepts any origin
func NewBookingStreamHandler(bookings *usecase.BookingService, allowedOrigins []string, logger logger.Logger) *BookingStreamHandler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	return &BookingStreamHandler{
		bookings: bookings,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				_, ok := origins[r.Header.Get("Origin")]
				return ok
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger: logger,
	}
}

// Stream subscribes before upgrading so a bad query is still answered over HTTP
func (h *BookingStreamHandler) Stream(c *gin.Context) {
	id := identity(c)
	status := middleware.Validated[dto.BookingStreamQuery](c).Status

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	var sub *usecase.Subscription[*entity.Booking]
	var err error
	if status != "" {
		sub, err = h.bookings.WatchStatus(ctx, id.UserID, status)
	} else {
		sub, err = h.bookings.Watch(ctx, id.UserID)
	}
	if err != nil {
		response.HandleError(c, h.logger, err)
		return
	}
	defer sub.Unsubscribe()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	log := h.logger.With("user_id", id.UserID)
	log.Info("Booking stream opened")
	defer log.Info("Booking stream closed")

	go h.readPump(conn, cancel)
	h.writePump(ctx, conn, sub, log)
}

// readPump only services control frames; any read failure ends the stream
func (h *BookingStreamHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read failed", "error", err)
			}
			return
		}
	}
}

func (h *BookingStreamHandler) writePump(ctx context.Context, conn *websocket.Conn, sub *usecase.Subscription[*entity.Booking], log logger.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-sub.C:
			if !ok {
				if err := sub.Err(); err != nil {
					log.Error("Booking subscription failed", "error", err)
					h.write(conn, StreamMessage{Type: StreamError, Error: "live updates are unavailable"})
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := h.write(conn, StreamMessage{Type: StreamSnapshot, Bookings: snap.Items}); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *BookingStreamHandler) write(conn *websocket.Conn, msg StreamMessage) error {
	if msg.Bookings == nil && msg.Type == StreamSnapshot {
		msg.Bookings = []*entity.Booking{}
	}
	msg.At = entity.FormatTimestamp(entity.Now())
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
