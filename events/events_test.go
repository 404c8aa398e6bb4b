package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	mu        sync.Mutex
	published int
	dropped   int
}

func (o *countingObserver) Published(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.published++
}

func (o *countingObserver) Dropped() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dropped++
}

func TestPublishToListeners(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewStream()
	go s.Dispatch(ctx)

	received := make(chan Event, 1)
	listenCtx, stopListening := context.WithCancel(ctx)
	go s.Listen(listenCtx, func(e Event) { received <- e })

	// the subscription is registered asynchronously
	require.Eventually(t, func() bool {
		s.Publish(Event{Name: "bounds", Action: "changed", Session: "abc"})
		select {
		case e := <-received:
			assert.Equal(t, "abc", e.Session)
			return true
		case <-time.After(10 * time.Millisecond):
			return false
		}
	}, time.Second, 20*time.Millisecond)
	stopListening()
}

func TestPublishNeverBlocks(t *testing.T) {
	o := &countingObserver{}
	s := NewObservedStream(o)
	for i := 0; i < bufferSize+10; i++ {
		s.Publish(Event{Name: "bounds"})
	}
	assert.Equal(t, bufferSize, o.published)
	assert.Equal(t, 10, o.dropped)
}

func TestListenEndsWithStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewStream()
	dispatched := make(chan struct{})
	go func() {
		s.Dispatch(ctx)
		close(dispatched)
	}()
	cancel()
	<-dispatched

	done := make(chan struct{})
	go func() {
		s.Listen(context.Background(), func(Event) {})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Listen did not return after the stream stopped")
	}
}
