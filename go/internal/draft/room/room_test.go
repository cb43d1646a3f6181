package room

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/courtsideapp/courtside/go/internal/draft/engine"
	"github.com/courtsideapp/courtside/go/internal/draft/events"
	"github.com/courtsideapp/courtside/go/internal/draft/order"
	"github.com/courtsideapp/courtside/go/internal/models"
)

// memGateway serves a single prebuilt state and swallows writes.
type memGateway struct {
	state engine.State
}

func (g *memGateway) AppendPick(context.Context, uuid.UUID, models.Pick) error {
	return nil
}

func (g *memGateway) SetStatus(context.Context, uuid.UUID, models.DraftStatus, *int64) error {
	return nil
}

func (g *memGateway) LoadState(_ context.Context, leagueID uuid.UUID) (*engine.State, error) {
	if leagueID != g.state.LeagueID {
		return nil, fmt.Errorf("unknown league %s", leagueID)
	}
	state := g.state
	return &state, nil
}

type testRoom struct {
	srv      *httptest.Server
	hub      *Room
	leagueID uuid.UUID
	members  []models.Member
	teams    []models.SportTeam
}

func newTestRoom(t *testing.T) *testRoom {
	t.Helper()

	leagueID := uuid.New()
	members := []models.Member{
		{ID: uuid.New(), LeagueID: leagueID, DisplayName: "Alice", DraftOrder: 1, Commissioner: true},
		{ID: uuid.New(), LeagueID: leagueID, DisplayName: "Bob", DraftOrder: 2},
	}
	teams := []models.SportTeam{
		{ID: uuid.New(), Name: "Gonzaga"},
		{ID: uuid.New(), Name: "Houston"},
	}
	cfg := models.DraftConfig{
		DraftStyle:       models.DraftStyleStraight,
		SelectionSeconds: 60,
		Rounds:           1,
		TimeoutAction:    models.TimeoutActionAutoSkip,
	}
	slots, err := order.Build(members, cfg.Rounds, cfg.DraftStyle)
	if err != nil {
		t.Fatalf("order.Build: %v", err)
	}

	gateway := &memGateway{state: engine.State{
		LeagueID: leagueID,
		Config:   cfg,
		Members:  members,
		Teams:    teams,
		Slots:    slots,
		Status:   models.DraftStatusNotStarted,
	}}

	hub := NewRoom(DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Start(ctx)

	manager := engine.NewManager(gateway, clockwork.NewFakeClock(), hub)
	handler := NewHandler(hub, manager)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)

	t.Cleanup(func() {
		srv.Close()
		manager.Close()
		cancel()
	})

	return &testRoom{srv: srv, hub: hub, leagueID: leagueID, members: members, teams: teams}
}

func (tr *testRoom) dial(t *testing.T, memberID uuid.UUID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(tr.srv.URL, "http") +
		"/ws/draft?league_id=" + tr.leagueID.String() + "&member_id=" + memberID.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) *events.DraftEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	var event events.DraftEvent
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	return &event
}

func sendCommand(t *testing.T, conn *websocket.Conn, cmd ClientCommand) {
	t.Helper()
	if err := conn.WriteJSON(cmd); err != nil {
		t.Fatalf("write command: %v", err)
	}
}

func TestJoinDeliversSnapshot(t *testing.T) {
	tr := newTestRoom(t)
	conn := tr.dial(t, tr.members[0].ID)

	event := readEvent(t, conn)
	if event.Type != events.EventTypeSnapshot {
		t.Fatalf("first event type = %s, want snapshot", event.Type)
	}

	var snap events.SnapshotPayload
	if err := json.Unmarshal(event.Data, &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if snap.Status != string(models.DraftStatusNotStarted) {
		t.Errorf("status = %s, want NOT_STARTED", snap.Status)
	}
	if snap.ServerNow.IsZero() {
		t.Error("snapshot must carry serverNow")
	}
	if len(snap.AvailableTeams) != len(tr.teams) {
		t.Errorf("available teams = %d, want %d", len(snap.AvailableTeams), len(tr.teams))
	}
}

func TestCommandBroadcastsToAllMembers(t *testing.T) {
	tr := newTestRoom(t)
	alice := tr.dial(t, tr.members[0].ID)
	bob := tr.dial(t, tr.members[1].ID)
	readEvent(t, alice) // join snapshots
	readEvent(t, bob)

	sendCommand(t, alice, ClientCommand{Action: "start"})

	for _, conn := range []*websocket.Conn{alice, bob} {
		event := readEvent(t, conn)
		if event.Type != events.EventTypeSnapshot {
			t.Fatalf("event type = %s, want snapshot", event.Type)
		}
		var snap events.SnapshotPayload
		if err := json.Unmarshal(event.Data, &snap); err != nil {
			t.Fatalf("unmarshal snapshot: %v", err)
		}
		if snap.Status != string(models.DraftStatusLive) {
			t.Errorf("status = %s, want LIVE", snap.Status)
		}
		if snap.CurrentSlot == nil || snap.CurrentSlot.MemberID != tr.members[0].ID.String() {
			t.Errorf("current slot = %+v, want Alice on the clock", snap.CurrentSlot)
		}
	}
}

func TestRejectionGoesOnlyToSender(t *testing.T) {
	tr := newTestRoom(t)
	alice := tr.dial(t, tr.members[0].ID)
	bob := tr.dial(t, tr.members[1].ID)
	readEvent(t, alice)
	readEvent(t, bob)

	// Bob is not the commissioner; his start is rejected privately.
	sendCommand(t, bob, ClientCommand{Action: "start"})

	event := readEvent(t, bob)
	if event.Type != events.EventTypeError {
		t.Fatalf("event type = %s, want error", event.Type)
	}
	var payload events.ErrorPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		t.Fatalf("unmarshal error payload: %v", err)
	}
	if payload.Message == "" {
		t.Error("error payload must carry a message")
	}

	// Alice sees nothing.
	alice.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := alice.ReadMessage(); err == nil {
		t.Fatal("rejection must not reach other members")
	}
}

func TestUnknownMemberRejectedAtHandshake(t *testing.T) {
	tr := newTestRoom(t)
	url := "ws" + strings.TrimPrefix(tr.srv.URL, "http") +
		"/ws/draft?league_id=" + tr.leagueID.String() + "&member_id=" + uuid.New().String()

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake rejection")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("handshake status = %v, want 403", resp)
	}
}

func TestLeaveCommandClosesConnection(t *testing.T) {
	tr := newTestRoom(t)
	alice := tr.dial(t, tr.members[0].ID)
	readEvent(t, alice)

	sendCommand(t, alice, ClientCommand{Action: "leave"})

	alice.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := alice.ReadMessage(); err == nil {
		t.Fatal("server should close the socket on leave")
	}
	if total, _ := tr.hub.Stats(); total != 0 {
		t.Errorf("connections after leave = %d, want 0", total)
	}
}

func TestSendAfterDisconnectIsDropped(t *testing.T) {
	c := &Connection{ID: "c1", send: make(chan []byte, 1)}
	if !c.enqueue([]byte(`{}`)) {
		t.Fatal("enqueue on a live connection should succeed")
	}

	// Both pumps tear down through unregister; the queue closes once and
	// a fan-out write racing the teardown is dropped, never a panic.
	c.closeSend()
	c.closeSend()
	if c.enqueue([]byte(`{}`)) {
		t.Fatal("enqueue after close must report failure")
	}
}

func TestSubmitPickRoundTrip(t *testing.T) {
	tr := newTestRoom(t)
	alice := tr.dial(t, tr.members[0].ID)
	readEvent(t, alice)

	sendCommand(t, alice, ClientCommand{Action: "start"})
	readEvent(t, alice)

	sendCommand(t, alice, ClientCommand{Action: "submit_pick", TeamID: tr.teams[0].ID.String()})

	event := readEvent(t, alice)
	var snap events.SnapshotPayload
	if err := json.Unmarshal(event.Data, &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if len(snap.Picks) != 1 || snap.Picks[0].TeamID != tr.teams[0].ID.String() {
		t.Fatalf("pick log = %+v, want one pick for %s", snap.Picks, tr.teams[0].Name)
	}
	if snap.CurrentSlot == nil || snap.CurrentSlot.MemberID != tr.members[1].ID.String() {
		t.Errorf("turn did not advance to Bob: %+v", snap.CurrentSlot)
	}
}
