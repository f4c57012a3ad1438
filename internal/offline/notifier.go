package offline

import (
	"log"
)

// Notice is a user-facing message about a change that could not be
// confirmed right away.
type Notice struct {
	Kind       MutationKind
	State      MutationState
	MutationID uint
	Message    string
}

// Notifier delivers notices. Implementations must not block.
type Notifier interface {
	Notify(n Notice)
}

// LogNotifier writes notices to a logger.
type LogNotifier struct {
	Logger *log.Logger
}

func (l LogNotifier) Notify(n Notice) {
	if l.Logger == nil {
		log.Printf("[SYNC] %s", n.Message)
		return
	}
	l.Logger.Printf("%s", n.Message)
}

// NopNotifier discards notices.
type NopNotifier struct{}

func (NopNotifier) Notify(Notice) {}

// ChanNotifier sends notices to a buffered channel, dropping them when the
// channel is full.
type ChanNotifier chan Notice

func (c ChanNotifier) Notify(n Notice) {
	select {
	case c <- n:
	default:
	}
}
