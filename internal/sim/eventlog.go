package sim

import "fmt"

// Event is one recorded step of a simulation.
type Event struct {
	Tick     int
	Member   string // member id, or "--" for world events
	Category string // resolve, roster, anchor
	Key      string // outcome or event name within the category
	Value    string // human-readable detail
	NumVal   float64
}

// String formats the event as one log line.
//
//	  42 blade    resolve/resolved        (95.0,200.0) d=1.20
func (e Event) String() string {
	return fmt.Sprintf("%4d %-8s %-23s %s", e.Tick, e.Member, e.Category+"/"+e.Key, e.Value)
}

// notable reports whether e is anything other than a successful resolve.
func (e Event) notable() bool {
	return e.Category != CategoryResolve || e.Key != "resolved"
}

// EventLog collects events in tick order. A quiet log drops successful
// resolves at the source.
type EventLog struct {
	events []Event
	quiet  bool
}

// NewEventLog creates an event log.
func NewEventLog(quiet bool) *EventLog {
	return &EventLog{quiet: quiet}
}

// Add records an event.
func (l *EventLog) Add(tick int, member, category, key, value string, numVal float64) {
	e := Event{Tick: tick, Member: member, Category: category, Key: key, Value: value, NumVal: numVal}
	if l.quiet && !e.notable() {
		return
	}
	l.events = append(l.events, e)
}

// Events returns all recorded events.
func (l *EventLog) Events() []Event {
	return l.events
}

// Count returns how many events match category and key. An empty key matches
// any key in the category.
func (l *EventLog) Count(category, key string) int {
	n := 0
	for _, e := range l.events {
		if e.Category == category && (key == "" || e.Key == key) {
			n++
		}
	}
	return n
}

// Notable returns up to n of the newest events that are not successful
// resolves, oldest first.
func (l *EventLog) Notable(n int) []Event {
	var out []Event
	for i := len(l.events) - 1; i >= 0 && len(out) < n; i-- {
		if l.events[i].notable() {
			out = append(out, l.events[i])
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Event categories.
const (
	CategoryResolve = "resolve"
	CategoryRoster  = "roster"
	CategoryAnchor  = "anchor"
)
