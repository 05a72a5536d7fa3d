package chatlog

import (
	"context"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/mgoltzsche/voicechat/internal/model"
	"github.com/mgoltzsche/voicechat/internal/pubsub"
)

type Entry = model.ChatEntry

// Log is the append-only transcript of a session.
// Insertion order is display order.
type Log struct {
	mutex   sync.RWMutex
	entries []Entry
	events  *pubsub.PubSub[Entry]
}

func New() *Log {
	return &Log{
		entries: make([]Entry, 0, 50),
		events:  pubsub.New[Entry](),
	}
}

// Append adds an entry to the end of the log and notifies subscribers.
func (l *Log) Append(sender, message string) {
	e := Entry{Sender: sender, Message: message}

	l.mutex.Lock()
	l.entries = append(l.entries, e)
	l.mutex.Unlock()

	l.events.Publish(e)
}

// Entries returns a copy of all entries in insertion order.
func (l *Log) Entries() []Entry {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return append([]Entry(nil), l.entries...)
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return len(l.entries)
}

// From returns the entries written by the given sender tag, ignoring case.
func (l *Log) From(sender string) []Entry {
	return lo.Filter(l.Entries(), func(e Entry, _ int) bool {
		return strings.EqualFold(e.Sender, sender)
	})
}

// Subscribe emits every entry appended after the call.
func (l *Log) Subscribe(ctx context.Context) pubsub.Subscription[Entry] {
	return l.events.Subscribe(ctx)
}

// Close terminates all subscriptions.
func (l *Log) Close() {
	l.events.Stop()
}
