package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Garsondee/formation-sense/internal/formation"
	"github.com/Garsondee/formation-sense/internal/sim"
)

// Command is an inbound change to the room's world. The same shape arrives
// over the websocket and the admin endpoint.
type Command struct {
	Type      string  `json:"type"` // join, leave, layout, group
	ID        string  `json:"id,omitempty"`
	Role      string  `json:"role,omitempty"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	Formation string  `json:"formation,omitempty"`
	Range     float64 `json:"range,omitempty"`
	Grouped   *bool   `json:"grouped,omitempty"`
}

// Room runs one simulated world. The world is only touched by the tick
// goroutine; everything else reaches it over channels.
type Room struct {
	world    *sim.World
	log      *zap.Logger
	interval time.Duration
	metrics  *Metrics

	commands chan Command
	// register and unregister are unbuffered so a send only succeeds while
	// the tick goroutine is running; after Run returns only done is ready.
	register   chan *ClientConn
	unregister chan *ClientConn
	done       chan struct{}

	clients map[string]*ClientConn

	mu     sync.RWMutex
	latest sim.State
}

// NewRoom wraps w, ticking tickRate times per second.
func NewRoom(w *sim.World, tickRate int, log *zap.Logger) *Room {
	if tickRate <= 0 {
		tickRate = 20
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Room{
		world:      w,
		log:        log,
		interval:   time.Second / time.Duration(tickRate),
		metrics:    &Metrics{},
		commands:   make(chan Command, 64),
		register:   make(chan *ClientConn),
		unregister: make(chan *ClientConn),
		done:       make(chan struct{}),
		clients:    make(map[string]*ClientConn),
		latest:     w.Snapshot(),
	}
}

// Metrics exposes the room counters.
func (r *Room) Metrics() *Metrics { return r.metrics }

// State returns the snapshot taken after the last tick.
func (r *Room) State() sim.State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// Submit queues a command for the next tick. It never blocks; a full queue
// rejects the command.
func (r *Room) Submit(c Command) bool {
	select {
	case r.commands <- c:
		return true
	default:
		r.metrics.IncRejected()
		return false
	}
}

// Run ticks until ctx is done, then closes every client.
func (r *Room) Run(ctx context.Context) {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			for id, c := range r.clients {
				c.Close()
				delete(r.clients, id)
			}
			return
		case <-ticker.C:
			start := time.Now()
			r.tick()
			r.metrics.AddTick(time.Since(start).Nanoseconds())
		}
	}
}

// tick drains inbound work, steps the world and broadcasts the result.
func (r *Room) tick() {
	r.drain()
	r.world.Step()
	st := r.world.Snapshot()
	r.metrics.CountOutcomes(st)

	r.mu.Lock()
	r.latest = st
	r.mu.Unlock()

	r.broadcast(st)
}

func (r *Room) drain() {
	for {
		select {
		case c := <-r.register:
			r.clients[c.id] = c
			r.metrics.AddClients(1)
			r.log.Info("client joined", zap.String("client", c.id))
		case c := <-r.unregister:
			if _, ok := r.clients[c.id]; ok {
				delete(r.clients, c.id)
				c.Close()
				r.metrics.AddClients(-1)
				r.log.Info("client left", zap.String("client", c.id))
			}
		case cmd := <-r.commands:
			if err := r.apply(cmd); err != nil {
				r.metrics.IncRejected()
				r.log.Warn("command rejected", zap.String("type", cmd.Type), zap.Error(err))
				continue
			}
			r.metrics.IncApplied()
		default:
			return
		}
	}
}

func (r *Room) apply(c Command) error {
	switch strings.ToLower(c.Type) {
	case "join":
		if c.ID == "" {
			return fmt.Errorf("join: missing id")
		}
		return r.world.Join(c.ID, formation.ParseRole(c.Role), c.X, c.Y)
	case "leave":
		return r.world.Leave(c.ID)
	case "layout":
		kind := r.world.Kind
		if c.Formation != "" {
			k, err := formation.ParseKind(c.Formation)
			if err != nil {
				return err
			}
			kind = k
		}
		rng := r.world.Range
		if c.Range > 0 {
			rng = c.Range
		}
		r.world.SetLayout(kind, rng)
		return nil
	case "group":
		if c.Grouped == nil {
			return fmt.Errorf("group: missing grouped")
		}
		r.world.SetGrouped(*c.Grouped)
		return nil
	default:
		return fmt.Errorf("unknown command %q", c.Type)
	}
}

func (r *Room) broadcast(st sim.State) {
	if len(r.clients) == 0 {
		return
	}
	payload := struct {
		Type string `json:"type"`
		sim.State
	}{Type: "state", State: st}
	b, err := json.Marshal(payload)
	if err != nil {
		r.log.Error("marshal state", zap.Error(err))
		return
	}
	for _, c := range r.clients {
		if !c.Enqueue(b) {
			r.metrics.IncDropped()
		}
	}
}

// leave asks the tick goroutine to drop c. Returns at once if the room stopped.
func (r *Room) leave(c *ClientConn) {
	select {
	case r.unregister <- c:
	case <-r.done:
	}
}

// join asks the tick goroutine to add c. Returns false if the room stopped.
func (r *Room) join(c *ClientConn) bool {
	select {
	case r.register <- c:
		return true
	case <-r.done:
		return false
	}
}
