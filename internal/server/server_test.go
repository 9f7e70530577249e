package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Garsondee/formation-sense/internal/formation"
	"github.com/Garsondee/formation-sense/internal/sim"
)

func newTestRoom() *Room {
	w := sim.New(
		sim.WithMember("lead", formation.RoleTank, 100, 100),
		sim.WithMember("bot", formation.RoleMelee, 95, 100),
		sim.WithAnchor("lead", 0, 0, 0),
	)
	return NewRoom(w, 100, nil)
}

func TestRoomTick_AppliesCommands(t *testing.T) {
	room := newTestRoom()
	room.Submit(Command{Type: "join", ID: "late", Role: "healer", X: 80, Y: 100})
	room.Submit(Command{Type: "dance"})
	room.Submit(Command{Type: "leave", ID: "nobody"})
	room.tick()

	st := room.State()
	if len(st.Members) != 3 {
		t.Fatalf("expected 3 members after join, got %d", len(st.Members))
	}
	snap := room.Metrics().Snapshot()
	if snap["commands_applied"].(int64) != 1 || snap["commands_rejected"].(int64) != 2 {
		t.Fatalf("expected 1 applied and 2 rejected, got %v", snap)
	}
	if snap["resolved"].(int64) != 2 {
		t.Fatalf("expected both bots resolved, got %v", snap)
	}
}

func TestRoomTick_LayoutAndGroupCommands(t *testing.T) {
	room := newTestRoom()
	off := false
	room.Submit(Command{Type: "layout", Formation: "raid", Range: 8})
	room.Submit(Command{Type: "group", Grouped: &off})
	room.tick()

	st := room.State()
	if st.Formation != "raid" || st.Range != 8 {
		t.Fatalf("expected raid/8, got %s/%v", st.Formation, st.Range)
	}
	if st.Members[1].Reason != "no_group" {
		t.Fatalf("expected no_group after disbanding, got %s", st.Members[1].Reason)
	}
	if n := room.Metrics().Snapshot()["no_group"].(int64); n != 1 {
		t.Fatalf("expected one no_group outcome, got %d", n)
	}
}

func TestHTTP_AdminConfig(t *testing.T) {
	room := newTestRoom()
	srv := httptest.NewServer(New(room, nil).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/admin/config", "application/json", strings.NewReader(`{"formation":"raid"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
	room.tick()

	resp, err = http.Get(srv.URL + "/admin/config")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var cfg layoutConfig
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Formation != "raid" || cfg.Range != 5 {
		t.Fatalf("expected raid with unchanged range 5, got %+v", cfg)
	}
}

func TestHTTP_AdminConfigRejectsBadInput(t *testing.T) {
	srv := httptest.NewServer(New(newTestRoom(), nil).Handler())
	defer srv.Close()
	for _, body := range []string{`{`, `{"formation":"wedge"}`, `{"range":-1}`} {
		resp, err := http.Post(srv.URL+"/admin/config", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, resp.StatusCode)
		}
	}
}

func TestHTTP_StateAndHealth(t *testing.T) {
	room := newTestRoom()
	room.tick()
	srv := httptest.NewServer(New(room, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/state")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var st sim.State
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Tick != 1 || len(st.Members) != 2 {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestWS_StreamsState(t *testing.T) {
	room := newTestRoom()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go room.Run(ctx)

	srv := httptest.NewServer(New(room, nil).Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(Command{Type: "join", ID: "late", Role: "ranged", X: 70, Y: 100}); err != nil {
		t.Fatal(err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg struct {
			Type    string            `json:"type"`
			Members []sim.MemberState `json:"members"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Type != "state" {
			t.Fatalf("expected state message, got %q", msg.Type)
		}
		if len(msg.Members) == 3 {
			return
		}
	}
}

func TestRoomJoin_RefusedAfterStop(t *testing.T) {
	room := newTestRoom()
	ctx, cancel := context.WithCancel(context.Background())
	go room.Run(ctx)
	cancel()
	<-room.done

	for i := 0; i < 200; i++ {
		c := &ClientConn{id: "late", send: make(chan []byte, 1)}
		if room.join(c) {
			t.Fatalf("attempt %d: join accepted by a stopped room", i)
		}
	}
}

// waitRejected polls the room counters until commands_rejected reaches want.
func waitRejected(t *testing.T, room *Room, want int64) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		got := room.Metrics().Snapshot()["commands_rejected"].(int64)
		if got == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected %d rejected commands, got %d", want, got)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWS_MalformedAndUnknownCommandsRejected(t *testing.T) {
	room := newTestRoom()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go room.Run(ctx)

	srv := httptest.NewServer(New(room, nil).Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Unparseable frames are rejected by the reader before reaching the room.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":`)); err != nil {
		t.Fatal(err)
	}
	waitRejected(t, room, 1)

	// Well-formed frames with an unknown type are rejected when the tick applies them.
	if err := conn.WriteJSON(Command{Type: "dance"}); err != nil {
		t.Fatal(err)
	}
	waitRejected(t, room, 2)

	if n := room.Metrics().Snapshot()["commands_applied"].(int64); n != 0 {
		t.Fatalf("expected no applied commands, got %d", n)
	}
}
