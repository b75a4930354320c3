package core

import "sync"

// EventType identifies what changed
type EventType int

const (
	EventModEnabled EventType = iota
	EventModDisabled
	EventModAdded
	EventModRemoved
	EventModInstalled
	EventConfigChanged
	EventRegulationChanged
	EventProfileReloaded
	EventProfilePruned
	EventFilesChanged
)

func (t EventType) String() string {
	switch t {
	case EventModEnabled:
		return "enabled"
	case EventModDisabled:
		return "disabled"
	case EventModAdded:
		return "added"
	case EventModRemoved:
		return "removed"
	case EventModInstalled:
		return "installed"
	case EventConfigChanged:
		return "config-changed"
	case EventRegulationChanged:
		return "regulation-changed"
	case EventProfileReloaded:
		return "profile-reloaded"
	case EventProfilePruned:
		return "profile-pruned"
	case EventFilesChanged:
		return "files-changed"
	default:
		return "unknown"
	}
}

// Event signals that a game's mod state changed and views should re-render
type Event struct {
	Type   EventType
	GameID string
	Path   string // Mod path, empty for game-wide events
}

// EventBus fans events out to subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the event.
type EventBus struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
}

// NewEventBus creates an event bus with no subscribers
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[int]chan Event)}
}

// Subscribe returns a channel of events and a function that stops delivery
// and closes the channel. Calling the function more than once is safe.
func (b *EventBus) Subscribe(buf int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, buf)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers e to every subscriber with room for it
func (b *EventBus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
