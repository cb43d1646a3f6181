// Package room hosts the live draft sessions: one websocket hub keyed by
// league, fed by the engines and (optionally) by a JetStream consumer on
// multi-instance deployments.
package room

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/courtsideapp/courtside/go/internal/draft/events"
)

// Room manages the websocket connections for every league's draft.
type Room struct {
	// Connection pools organized by league ID
	leagueConnections map[uuid.UUID]map[*Connection]bool
	mu                sync.RWMutex

	upgrader websocket.Upgrader
	config   Config

	broadcastCh chan broadcastMessage
}

// Connection represents one member's websocket into a draft room.
type Connection struct {
	ID       string
	MemberID uuid.UUID
	LeagueID uuid.UUID
	conn     *websocket.Conn
	send     chan []byte
	sendMu   sync.Mutex
	closed   bool
	room     *Room

	// onCommand receives every parsed client command for this connection.
	onCommand func(c *Connection, cmd ClientCommand)

	ConnectedAt time.Time
}

// Config holds configuration for the room's websocket connections.
type Config struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

type broadcastMessage struct {
	LeagueID uuid.UUID
	Event    *events.DraftEvent
}

// ClientCommand is the inbound message contract for draft clients.
type ClientCommand struct {
	Action string `json:"action"` // start | pause | resume | submit_pick | leave
	TeamID string `json:"team_id,omitempty"`
}

// DefaultConfig returns the default websocket configuration.
func DefaultConfig() Config {
	return Config{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// NewRoom creates an empty room hub.
func NewRoom(config Config) *Room {
	return &Room{
		leagueConnections: make(map[uuid.UUID]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan broadcastMessage, 1000),
	}
}

// Start processes the broadcast queue until ctx is cancelled.
func (r *Room) Start(ctx context.Context) {
	log.Info().Msg("draft room started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("draft room shutting down")
			return
		case message := <-r.broadcastCh:
			r.handleBroadcast(message)
		}
	}
}

// Broadcast implements the engine's broadcaster contract: every snapshot
// an engine emits fans out to the league's connections.
func (r *Room) Broadcast(event *events.DraftEvent) {
	leagueID, err := uuid.Parse(event.LeagueID)
	if err != nil {
		log.Error().Err(err).Str("league_id", event.LeagueID).Msg("event has invalid league id")
		return
	}
	select {
	case r.broadcastCh <- broadcastMessage{LeagueID: leagueID, Event: event}:
	default:
		log.Warn().Str("league_id", event.LeagueID).Msg("broadcast channel full, dropping message")
	}
}

// Join upgrades the HTTP request and registers the member's connection.
// onCommand is invoked from the connection's read loop for every parsed
// client command.
func (r *Room) Join(w http.ResponseWriter, req *http.Request, leagueID, memberID uuid.UUID, onCommand func(*Connection, ClientCommand)) (*Connection, error) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return nil, err
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		MemberID:    memberID,
		LeagueID:    leagueID,
		conn:        conn,
		send:        make(chan []byte, 256),
		room:        r,
		onCommand:   onCommand,
		ConnectedAt: time.Now(),
	}

	r.register(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("member_id", memberID.String()).
		Str("league_id", leagueID.String()).
		Msg("member joined draft room")

	return connection, nil
}

func (r *Room) register(conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.leagueConnections[conn.LeagueID] == nil {
		r.leagueConnections[conn.LeagueID] = make(map[*Connection]bool)
	}
	r.leagueConnections[conn.LeagueID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("league_id", conn.LeagueID.String()).
		Int("total_connections", len(r.leagueConnections[conn.LeagueID])).
		Msg("connection registered")
}

// Leave detaches a connection at the client's explicit request. Closing
// the socket ends both pumps; their deferred unregisters become no-ops.
func (r *Room) Leave(conn *Connection) {
	r.unregister(conn)
	conn.conn.Close()
}

func (r *Room) unregister(conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if connections, exists := r.leagueConnections[conn.LeagueID]; exists {
		if _, exists := connections[conn]; exists {
			delete(connections, conn)
			conn.closeSend()

			if len(connections) == 0 {
				delete(r.leagueConnections, conn.LeagueID)
			}

			log.Info().
				Str("connection_id", conn.ID).
				Str("member_id", conn.MemberID.String()).
				Str("league_id", conn.LeagueID.String()).
				Msg("member left draft room")
		}
	}
}

func (r *Room) handleBroadcast(message broadcastMessage) {
	r.mu.RLock()
	connections, exists := r.leagueConnections[message.LeagueID]
	if !exists {
		r.mu.RUnlock()
		return
	}

	// Snapshot the targets so the lock is not held while writing.
	var targets []*Connection
	for conn := range connections {
		targets = append(targets, conn)
	}
	r.mu.RUnlock()

	eventData, err := json.Marshal(message.Event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	for _, conn := range targets {
		if conn.enqueue(eventData) {
			continue
		}
		// Connection is slow/dead, close it
		log.Warn().
			Str("connection_id", conn.ID).
			Str("member_id", conn.MemberID.String()).
			Msg("connection send buffer full, closing connection")
		r.unregister(conn)
		conn.conn.Close()
	}

	log.Debug().
		Str("event_type", string(message.Event.Type)).
		Str("league_id", message.LeagueID.String()).
		Int("connections", len(targets)).
		Msg("event broadcasted")
}

// Stats returns per-league connection counts.
func (r *Room) Stats() (total int, leagues map[string]int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	leagues = make(map[string]int)
	for leagueID, connections := range r.leagueConnections {
		leagues[leagueID.String()] = len(connections)
		total += len(connections)
	}
	return total, leagues
}

// deliver queues an event for this connection only. Used for join
// snapshots and command rejections; a full buffer means a client so far
// behind the event is better dropped than blocked on.
func (c *Connection) deliver(event *events.DraftEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to marshal event")
		return
	}
	if !c.enqueue(data) {
		log.Warn().Str("connection_id", c.ID).Msg("send buffer full, dropping direct event")
	}
}

// enqueue hands data to the write pump. It reports false when the
// buffer is full or the connection is already torn down: a broadcast
// snapshots its targets before writing, so a send can race the read
// pump's unregister and must never hit a closed channel.
func (c *Connection) enqueue(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// closeSend shuts the send queue exactly once. Both pumps tear down
// through unregister, so a second call is a no-op.
func (c *Connection) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// writePump drains the send queue to the socket and keeps pings flowing.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.room.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.room.unregister(c)
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.room.config.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to websocket")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.room.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump reads client commands until the socket dies.
func (c *Connection) readPump() {
	defer func() {
		c.room.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.room.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.room.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.room.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected websocket close error")
			}
			break
		}

		var cmd ClientCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			log.Debug().
				Str("connection_id", c.ID).
				Msg("ignoring malformed client message")
			c.conn.SetReadDeadline(time.Now().Add(c.room.config.ReadTimeout))
			continue
		}
		if c.onCommand != nil {
			c.onCommand(c, cmd)
		}
		c.conn.SetReadDeadline(time.Now().Add(c.room.config.ReadTimeout))
	}
}
