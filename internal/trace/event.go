package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint represents an instant event.
	KindPoint
	KindHeartbeat // periodic liveness signal
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity of the event. Lower values are coarser.
type Scope uint8

const (
	// ScopeDriver covers CLI commands and batch runs.
	ScopeDriver Scope = iota + 1
	// ScopeRequest covers one resolve call.
	ScopeRequest
	// ScopePhase covers one phase step of a request.
	ScopePhase
	// ScopeDecl covers one algorithm application.
	ScopeDecl
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopeRequest:
		return "request"
	case ScopePhase:
		return "phase"
	case ScopeDecl:
		return "decl"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time         `msgpack:"time"`
	Seq      uint64            `msgpack:"seq"`
	Kind     Kind              `msgpack:"kind"`
	Scope    Scope             `msgpack:"scope"`
	SpanID   uint64            `msgpack:"span"`
	ParentID uint64            `msgpack:"parent,omitempty"`
	Request  string            `msgpack:"req,omitempty"` // resolve request id
	Name     string            `msgpack:"name"`          // e.g. "resolve", "phase:Types", "decl:demo.Box"
	Detail   string            `msgpack:"detail,omitempty"`
	Extra    map[string]string `msgpack:"extra,omitempty"`
}
