package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/websocket"

	"github.com/mishwarapp/mishwar/internal/pkg/logger"
	"github.com/mishwarapp/mishwar/internal/pkg/models"
)

// sendBufferSize bounds the per-client outbound queue. A client that
// cannot drain this many frames is considered slow and gets dropped
// frames rather than blocking room broadcasts.
const sendBufferSize = 32

// Client is a single authenticated WebSocket connection.
type Client struct {
	UserID string
	Role   string
	Conn   *websocket.Conn

	send chan models.WSMessage
	done chan struct{}
}

// CustomClaims represents custom JWT claims used in WebSocket authentication
type CustomClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// NewClient wraps an upgraded connection and starts its writer loop.
func NewClient(userID, role string, conn *websocket.Conn) *Client {
	c := &Client{
		UserID: userID,
		Role:   role,
		Conn:   conn,
		send:   make(chan models.WSMessage, sendBufferSize),
		done:   make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

// writeLoop serializes all writes to the connection. gorilla/websocket
// permits at most one concurrent writer.
func (c *Client) writeLoop() {
	for {
		select {
		case msg := <-c.send:
			if err := c.Conn.WriteJSON(msg); err != nil {
				logger.Warn("WebSocket write failed",
					logger.String("user_id", c.UserID),
					logger.Err(err))
				return
			}
		case <-c.done:
			return
		}
	}
}

// Send queues a message for delivery. Returns false when the client's
// buffer is full and the frame was dropped.
func (c *Client) Send(event string, data interface{}) bool {
	rawData, err := json.Marshal(data)
	if err != nil {
		logger.Error("Error marshaling message data",
			logger.String("event", event),
			logger.Err(err))
		return false
	}

	msg := models.WSMessage{Event: event, Data: rawData}

	select {
	case c.send <- msg:
		return true
	default:
		logger.Warn("Dropping frame for slow WebSocket client",
			logger.String("user_id", c.UserID),
			logger.String("event", event))
		return false
	}
}

// Close stops the writer loop. The connection itself is closed by the
// handler that owns it.
func (c *Client) Close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

func parseClaims(tokenString, secret string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
