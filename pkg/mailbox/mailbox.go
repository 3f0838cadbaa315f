package mailbox

import (
	"sync"

	"github.com/flowbase/dagctl/pkg/uri"
)

// Kind identifies the lifecycle event carried by a Message.
type Kind string

const (
	Done    Kind = "done"
	Fail    Kind = "fail"
	Started Kind = "started"
)

// Message is one lifecycle event posted by a worker.
type Message struct {
	URI uri.URI
	// Kind is Done, Fail, Started, or an arbitrary value posted by a
	// misbehaving body — the scheduler logs and ignores anything it does
	// not recognize rather than rejecting the message outright.
	Kind Kind
	// RunFlag accompanies Started: true means genuine work began, false
	// means the task reported starting despite being pre-satisfied — a
	// protocol violation the scheduler treats as fatal.
	RunFlag bool
}

// Mailbox is a many-producer, single-consumer, FIFO, unbounded, non-blocking
// queue. Producers never block on Post; the single consumer drains fully on
// each scheduler tick via TryRecv.
type Mailbox struct {
	mu    sync.Mutex
	queue []Message
}

// New returns an empty Mailbox.
func New() *Mailbox {
	return &Mailbox{}
}

// Post enqueues msg. Safe for concurrent use by any number of producers.
func (m *Mailbox) Post(msg Message) {
	m.mu.Lock()
	m.queue = append(m.queue, msg)
	m.mu.Unlock()
}

// PostDone posts a Done message for u.
func (m *Mailbox) PostDone(u uri.URI) { m.Post(Message{URI: u, Kind: Done}) }

// PostFail posts a Fail message for u.
func (m *Mailbox) PostFail(u uri.URI) { m.Post(Message{URI: u, Kind: Fail}) }

// PostStarted posts a Started message for u with the given run flag.
func (m *Mailbox) PostStarted(u uri.URI, ranForReal bool) {
	m.Post(Message{URI: u, Kind: Started, RunFlag: ranForReal})
}

// TryRecv pops the oldest message without blocking. ok is false if the
// mailbox is currently empty.
func (m *Mailbox) TryRecv() (msg Message, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return Message{}, false
	}
	msg = m.queue[0]
	m.queue = m.queue[1:]
	return msg, true
}

// Empty reports whether the mailbox currently holds no messages.
func (m *Mailbox) Empty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue) == 0
}

// Len returns the current queue depth.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
