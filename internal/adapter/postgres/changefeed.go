package postgres

import (
	"encoding/json"
	"log"
	"time"

	"github.com/lib/pq"
)

// ChangeEvent is one row-level change published on the NOTIFY channel.
type ChangeEvent struct {
	UserID int64  `json:"userId"`
	Table  string `json:"table"`
	Op     string `json:"op"`
	ID     string `json:"id"`
}

// ChangeFeed streams entry and goal changes via LISTEN/NOTIFY. Consumers
// read from Events until Close; reconnects are handled by pq.Listener.
type ChangeFeed struct {
	listener *pq.Listener
	events   chan ChangeEvent
}

// NewChangeFeed opens a dedicated listening connection on the change channel.
func NewChangeFeed(connStr string) (*ChangeFeed, error) {
	l := pq.NewListener(connStr, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("change feed: %v", err)
		}
	})
	if err := l.Listen(changeChannel); err != nil {
		_ = l.Close()
		return nil, err
	}
	f := &ChangeFeed{listener: l, events: make(chan ChangeEvent, 64)}
	go f.run()
	return f, nil
}

func (f *ChangeFeed) run() {
	defer close(f.events)
	for n := range f.listener.Notify {
		if n == nil {
			// Reconnect marker; state may have been missed, consumers
			// should re-read if they care.
			continue
		}
		var ev ChangeEvent
		if err := json.Unmarshal([]byte(n.Extra), &ev); err != nil {
			log.Printf("change feed: bad payload: %v", err)
			continue
		}
		f.events <- ev
	}
}

// Events returns the stream of change events.
func (f *ChangeFeed) Events() <-chan ChangeEvent {
	return f.events
}

// Close stops listening and closes the event stream.
func (f *ChangeFeed) Close() error {
	return f.listener.Close()
}
