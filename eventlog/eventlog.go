package eventlog

import (
	"log"
	"sync"
	"time"

	"github.com/lixenwraith/gridscout/board"
)

// DefaultCapacity bounds the in-memory history
const DefaultCapacity = 500

// Entry is one logged notice with its arrival time and sequence number
type Entry struct {
	Seq    uint64
	Time   time.Time
	Notice board.Notice
}

// Log is an ordered, bounded history of board notices
// Oldest entries are evicted first once capacity is reached
// Safe for concurrent use; subscribers are called synchronously in Log order
type Log struct {
	mu          sync.Mutex
	entries     []Entry // Ring, head at start
	start       int
	capacity    int
	seq         uint64
	subscribers []func(Entry)
	mirror      *log.Logger
	now         func() time.Time
}

// New creates a log; mirror may be nil
func New(capacity int, mirror *log.Logger) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
		mirror:   mirror,
		now:      time.Now,
	}
}

// Subscribe registers fn for every future entry
func (l *Log) Subscribe(fn func(Entry)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subscribers = append(l.subscribers, fn)
}

// Log appends n, implementing board.LogSink
func (l *Log) Log(n board.Notice) {
	l.mu.Lock()
	l.seq++
	e := Entry{Seq: l.seq, Time: l.now(), Notice: n}
	if len(l.entries) < l.capacity {
		l.entries = append(l.entries, e)
	} else {
		l.entries[l.start] = e
		l.start = (l.start + 1) % l.capacity
	}
	subs := l.subscribers
	l.mu.Unlock()

	if l.mirror != nil {
		l.mirror.Printf("%s: %s", n.Kind, n.Text)
	}
	for _, fn := range subs {
		fn(e)
	}
}

// Entries returns the history oldest first
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, 0, len(l.entries))
	out = append(out, l.entries[l.start:]...)
	out = append(out, l.entries[:l.start]...)
	return out
}

// Tail returns up to n most recent entries, oldest first
func (l *Log) Tail(n int) []Entry {
	all := l.Entries()
	if n < len(all) {
		return all[len(all)-n:]
	}
	return all
}

// Texts returns the display text of every entry, oldest first
func (l *Log) Texts() []string {
	entries := l.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Notice.Text
	}
	return out
}

// Len returns the retained entry count
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Total returns how many notices were ever logged
func (l *Log) Total() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}
