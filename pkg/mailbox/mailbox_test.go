package mailbox

import (
	"sync"
	"testing"

	"github.com/flowbase/dagctl/pkg/uri"
)

func TestMailbox_EmptyInitially(t *testing.T) {
	mb := New()
	if !mb.Empty() {
		t.Error("expected a new Mailbox to be empty")
	}
	if mb.Len() != 0 {
		t.Errorf("expected Len 0, got %d", mb.Len())
	}
	if _, ok := mb.TryRecv(); ok {
		t.Error("expected TryRecv on an empty Mailbox to report ok=false")
	}
}

func TestMailbox_PostDoneFailStarted(t *testing.T) {
	mb := New()
	a := uri.URI("task://a")
	b := uri.URI("task://b")
	c := uri.URI("task://c")

	mb.PostDone(a)
	mb.PostFail(b)
	mb.PostStarted(c, true)

	if mb.Len() != 3 {
		t.Fatalf("expected 3 queued messages, got %d", mb.Len())
	}

	msg, ok := mb.TryRecv()
	if !ok || msg.URI != a || msg.Kind != Done {
		t.Fatalf("expected Done message for %s, got %+v ok=%v", a, msg, ok)
	}

	msg, ok = mb.TryRecv()
	if !ok || msg.URI != b || msg.Kind != Fail {
		t.Fatalf("expected Fail message for %s, got %+v ok=%v", b, msg, ok)
	}

	msg, ok = mb.TryRecv()
	if !ok || msg.URI != c || msg.Kind != Started || !msg.RunFlag {
		t.Fatalf("expected Started message with RunFlag=true for %s, got %+v ok=%v", c, msg, ok)
	}

	if !mb.Empty() {
		t.Error("expected Mailbox to be empty after draining all messages")
	}
}

func TestMailbox_PostStartedCarriesRunFlag(t *testing.T) {
	mb := New()
	u := uri.URI("task://a")
	mb.PostStarted(u, false)

	msg, ok := mb.TryRecv()
	if !ok {
		t.Fatal("expected a message")
	}
	if msg.RunFlag {
		t.Error("expected RunFlag=false to survive PostStarted(u, false)")
	}
}

func TestMailbox_FIFOOrdering(t *testing.T) {
	mb := New()
	uris := []uri.URI{"task://a", "task://b", "task://c", "task://d"}
	for _, u := range uris {
		mb.PostDone(u)
	}

	for _, want := range uris {
		msg, ok := mb.TryRecv()
		if !ok {
			t.Fatalf("expected a message for %s", want)
		}
		if msg.URI != want {
			t.Fatalf("FIFO violated: expected %s, got %s", want, msg.URI)
		}
	}
}

func TestMailbox_ConcurrentProducersSingleConsumer(t *testing.T) {
	mb := New()
	const producers = 20
	const perProducer = 50

	var wg sync.WaitGroup
	wg.Add(producers)
	for i := 0; i < producers; i++ {
		go func(n int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				mb.PostDone(uri.URI("task://p"))
			}
		}(i)
	}
	wg.Wait()

	if mb.Len() != producers*perProducer {
		t.Fatalf("expected %d messages, got %d", producers*perProducer, mb.Len())
	}

	count := 0
	for {
		if _, ok := mb.TryRecv(); !ok {
			break
		}
		count++
	}
	if count != producers*perProducer {
		t.Fatalf("expected to drain %d messages, got %d", producers*perProducer, count)
	}
}
