package domain

// EventKind tells a bot command apart from plain conversational text.
type EventKind int

const (
	EventCommand EventKind = iota + 1
	EventText
)

func (k EventKind) String() string {
	switch k {
	case EventCommand:
		return "command"
	case EventText:
		return "text"
	default:
		return "unknown"
	}
}

// Event is one inbound message, consumed once and not retained.
type Event struct {
	ChatID   int64
	SenderID int64
	Kind     EventKind
	// Command is set for EventCommand, without the leading slash or @botname suffix.
	Command string
	Text    string
}
