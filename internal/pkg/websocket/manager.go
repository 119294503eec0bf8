// Package websocket manages real-time connections and per-ride rooms.
package websocket

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/mishwarapp/mishwar/internal/pkg/constants"
	"github.com/mishwarapp/mishwar/internal/pkg/logger"
	"github.com/mishwarapp/mishwar/internal/pkg/models"
)

// Manager tracks connected clients and ride rooms.
type Manager struct {
	sync.RWMutex
	clients  map[string]*Client            // user_id -> client
	rooms    map[string]map[string]*Client // ride_id -> user_id -> client
	cfg      models.JWTConfig
	upgrader websocket.Upgrader
}

// NewManager creates a new WebSocket manager
func NewManager(jwtConfig models.JWTConfig) *Manager {
	return &Manager{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		cfg:     jwtConfig,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleConnection authenticates and upgrades a WebSocket connection,
// then hands it to handleClient. The connection is closed and the client
// deregistered when handleClient returns.
func (m *Manager) HandleConnection(c echo.Context, handleClient func(*Client) error) error {
	userID, role, err := m.authenticate(c)
	if err != nil {
		return err
	}

	ws, err := m.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := NewClient(userID, role, ws)
	m.addClient(client)

	defer func() {
		m.removeClient(client)
		client.Close()
		ws.Close()
	}()

	return handleClient(client)
}

// authenticate validates the bearer token and returns user identity.
// Browsers cannot set headers on WebSocket dials, so a token query
// parameter is accepted as a fallback.
func (m *Manager) authenticate(c echo.Context) (userID, role string, err error) {
	tokenString := ""

	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
		}
		tokenString = parts[1]
	} else {
		tokenString = c.QueryParam("token")
	}

	if tokenString == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "Authorization is required")
	}

	claims, err := parseClaims(tokenString, m.cfg.Secret)
	if err != nil {
		logger.Warn("Token validation failed", logger.Err(err))
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	return claims.UserID, claims.Role, nil
}

func (m *Manager) addClient(client *Client) {
	m.Lock()
	defer m.Unlock()
	m.clients[client.UserID] = client
}

func (m *Manager) removeClient(client *Client) {
	m.Lock()
	defer m.Unlock()

	if current, ok := m.clients[client.UserID]; ok && current == client {
		delete(m.clients, client.UserID)
	}
	for rideID, members := range m.rooms {
		if members[client.UserID] == client {
			delete(members, client.UserID)
			if len(members) == 0 {
				delete(m.rooms, rideID)
			}
		}
	}
}

// GetClient returns a connected client by user ID
func (m *Manager) GetClient(userID string) (*Client, bool) {
	m.RLock()
	defer m.RUnlock()
	client, exists := m.clients[userID]
	return client, exists
}

// JoinRoom adds a client to a ride room
func (m *Manager) JoinRoom(rideID string, client *Client) {
	m.Lock()
	defer m.Unlock()

	members, ok := m.rooms[rideID]
	if !ok {
		members = make(map[string]*Client)
		m.rooms[rideID] = members
	}
	members[client.UserID] = client
}

// LeaveRoom removes a client from a ride room
func (m *Manager) LeaveRoom(rideID string, client *Client) {
	m.Lock()
	defer m.Unlock()

	members, ok := m.rooms[rideID]
	if !ok {
		return
	}
	if members[client.UserID] == client {
		delete(members, client.UserID)
		if len(members) == 0 {
			delete(m.rooms, rideID)
		}
	}
}

// BroadcastToRoom sends an event to every client in a ride room. Slow
// clients get the frame dropped rather than delaying the rest.
func (m *Manager) BroadcastToRoom(rideID string, event string, data interface{}) {
	m.RLock()
	members := make([]*Client, 0, len(m.rooms[rideID]))
	for _, client := range m.rooms[rideID] {
		members = append(members, client)
	}
	m.RUnlock()

	for _, client := range members {
		client.Send(event, data)
	}
}

// NotifyUser sends an event to a specific connected user. Returns false
// when the user has no active connection.
func (m *Manager) NotifyUser(userID string, event string, data interface{}) bool {
	client, exists := m.GetClient(userID)
	if !exists {
		return false
	}
	return client.Send(event, data)
}

// SendErrorMessage sends an error frame to a client
func (m *Manager) SendErrorMessage(client *Client, code, message string) {
	client.Send(constants.EventError, models.WSErrorMessage{
		Code:    code,
		Message: message,
	})
}
