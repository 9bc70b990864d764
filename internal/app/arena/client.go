/*
Package arena contains the core logic for pairing named connections into two-party
game sessions and relaying validated moves between them.

This file defines the Client struct, representing one active WebSocket connection.
It manages the connection's message loops (ReadPump and WritePump) and queues
outbound events. All mutable Client state beyond the pumps is owned by the hub
goroutine.
*/
package arena

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"parlor/internal/pkg/errs"
	"parlor/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 4096

	// sendQueueSize is the capacity of the per-client outbound queue.
	sendQueueSize = 256
)

// Client represents one active WebSocket connection.
//
// The username, session, and accepted state are read and written exclusively by
// the hub goroutine; the pumps only move bytes. Outbound events are likewise
// queued only from the hub goroutine, so closing the send channel cannot race
// a send.
type Client struct {
	// hub is the event loop this connection posts to.
	hub *Hub

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// id is the ephemeral connection identity, distinct from the username.
	id string

	// username holds the handshake-requested name until the hub confirms it,
	// then the confirmed (possibly renamed) name.
	username string

	// session is the active game session, nil when unpaired.
	session *Session

	// send is a buffered channel of frames waiting to be written out.
	send chan []byte

	// sendClosed marks the send channel closed; hub goroutine only.
	sendClosed bool

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection requesting the
// given username.
func NewClient(hub *Hub, wsConn *websocket.Conn, username string) *Client {
	id := uuid.New().String()

	clientLogger := logx.Logger().With().
		Str("conn_id", id).
		Str("username", username).
		Logger()

	return &Client{
		hub:      hub,
		conn:     wsConn,
		id:       id,
		username: username,
		send:     make(chan []byte, sendQueueSize),
		logger:   clientLogger,
	}
}

// ReadPump reads frames from the WebSocket connection and posts them to the
// hub in arrival order. It handles heartbeats (Pong) and performs cleanup when
// the connection closes.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(messageBytes, &env); err != nil {
			c.logger.Warn().Err(err).
				Bytes("message_bytes", messageBytes).
				Msg("Client sent invalid JSON")
			continue
		}

		c.hub.postInbound(c, env.Type, env.Payload)
	}
}

// cleanupOnDisconnect notifies the hub that the connection is gone and closes
// the underlying connection. Runs for normal and abnormal termination alike.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.hub.postDisconnect(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// WritePump writes frames from the send channel to the WebSocket connection
// and keeps the heartbeat alive.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage writes one frame pulled from the send channel. Returns
// false when the WritePump loop should terminate.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic Ping to maintain the connection heartbeat.
// Returns false when the WritePump loop should terminate.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Debug().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// sendEvent marshals the event into an envelope and queues it for delivery.
// A nil payload produces an envelope without a payload field. The frame is
// dropped with a warning if the client's queue is full.
func (c *Client) sendEvent(eventType EventType, payload any) {
	if c.sendClosed {
		return
	}

	env := Envelope{Type: eventType}

	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			c.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("Error marshaling event payload")
			return
		}
		env.Payload = payloadBytes
	}

	messageBytes, err := json.Marshal(env)
	if err != nil {
		c.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("Error marshaling event envelope")
		return
	}

	select {
	case c.send <- messageBytes:
	default:
		c.logger.Warn().
			Str("event_type", string(eventType)).
			Int("queue_len", len(c.send)).
			Msg("Client send channel full, dropping event")
	}
}

// sendError queues an error event describing the given business error.
func (c *Client) sendError(customErr *errs.CustomError) {
	c.sendEvent(EventError, ErrorPayload{
		Code:    customErr.Code,
		Message: customErr.Message,
	})
}

// kick terminates the connection by closing the send channel. The WritePump
// drains any queued frames (a denial reason, typically) and then writes the
// close frame.
func (c *Client) kick(reason string) {
	c.logger.Warn().
		Str("reason", reason).
		Msg("Kicking client connection.")

	c.closeSend()
}

// closeSend closes the send channel exactly once. Like every other send-channel
// operation it runs on the hub goroutine, so the flag needs no lock.
func (c *Client) closeSend() {
	if c.sendClosed {
		return
	}
	c.sendClosed = true
	close(c.send)
}
