package contract

import (
	"github.com/ethereum/go-ethereum/common"
)

// Event is one emitted event as reported by the client.
// ReturnValues is usually a decoded record (map with positional and named
// keys) but may be any raw value for single-output events.
type Event struct {
	Name         string
	Address      common.Address
	BlockNumber  uint64
	TxHash       common.Hash
	LogIndex     uint
	ReturnValues any
}

// Kind tells which shape an event Source has.
type Kind int

const (
	Empty Kind = iota
	RawList
	SingleEvent
	Receipt
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case RawList:
		return "raw-list"
	case SingleEvent:
		return "single-event"
	case Receipt:
		return "receipt"
	}
	return "unknown"
}

// Match is the value a receipt holds under one event name: a single event
// when it was emitted once, a list when it was emitted several times.
type Match struct {
	single *Event
	list   []Event
}

func One(e Event) Match {
	return Match{single: &e}
}

func Many(events ...Event) Match {
	return Match{list: events}
}

// Source is the input of Normalize. The zero value is an Empty source.
type Source struct {
	kind    Kind
	records []Event
	event   Event
	events  map[string]Match
}

func EmptySource() Source {
	return Source{kind: Empty}
}

// RawListSource wraps records returned by a historical event query.
func RawListSource(records []Event) Source {
	return Source{kind: RawList, records: records}
}

func SingleEventSource(e Event) Source {
	return Source{kind: SingleEvent, event: e}
}

// ReceiptSource wraps the events map of a transaction receipt.
func ReceiptSource(events map[string]Match) Source {
	return Source{kind: Receipt, events: events}
}

func (s Source) Kind() Kind {
	return s.kind
}

// Result of Normalize. A SingleEvent source yields its payload as is,
// reachable through Bare; every other source yields Values.
type Result struct {
	Values []any

	bare   any
	isBare bool
}

// Bare returns the payload of a single event source.
func (r Result) Bare() (any, bool) {
	return r.bare, r.isBare
}

// Normalize collects the returnValues of every event called name in src.
//
// A receipt is reduced to the list of matching events and normalized
// again, so for receipts the result is always a list (possibly empty).
func Normalize(name string, src Source) Result {
	switch src.kind {
	case RawList:
		values := make([]any, 0, len(src.records))
		for _, r := range src.records {
			values = append(values, r.ReturnValues)
		}
		return Result{Values: values}

	case SingleEvent:
		return Result{bare: src.event.ReturnValues, isBare: true}

	case Receipt:
		m, ok := src.events[name]
		switch {
		case !ok:
			return Normalize(name, RawListSource(nil))
		case m.single != nil:
			return Normalize(name, RawListSource([]Event{*m.single}))
		default:
			return Normalize(name, RawListSource(m.list))
		}
	}
	return Result{Values: []any{}}
}
