package events

import (
	"context"
)

// Event is a notification about a map session
type Event struct {
	Name    string      `json:"name"`
	Action  string      `json:"action"`
	Session string      `json:"session,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Observer is told about events that could not be delivered
type Observer interface {
	Published(name string)
	Dropped()
}

type noopObserver struct{}

func (noopObserver) Published(string) {}
func (noopObserver) Dropped()         {}

// Stream fans events out to subscribers. Publishing never blocks: events are
// dropped for subscribers that do not keep up.
type Stream struct {
	channel chan Event

	subcriptions chan *subscription
	unsubcribes  chan *subscription
	done         chan struct{}

	observer Observer
}

type subscription struct {
	events chan Event
}

const bufferSize = 256

func NewStream() *Stream {
	return NewObservedStream(noopObserver{})
}

func NewObservedStream(observer Observer) *Stream {
	return &Stream{
		channel:      make(chan Event, bufferSize),
		subcriptions: make(chan *subscription),
		unsubcribes:  make(chan *subscription),
		done:         make(chan struct{}),
		observer:     observer,
	}
}

func (s *Stream) Publish(e Event) {
	select {
	case s.channel <- e:
		s.observer.Published(e.Name)
	default:
		s.observer.Dropped()
	}
}

// Listen calls f for every event until ctx is done or the stream stops
func (s *Stream) Listen(ctx context.Context, f func(e Event)) {
	subscription := s.subscribe()
	if subscription == nil {
		return
	}
	for {
		select {
		case e, ok := <-subscription.events:
			if !ok {
				return
			}
			f(e)
		case <-ctx.Done():
			select {
			case s.unsubcribes <- subscription:
			case <-s.done:
			}
			return
		}
	}
}

func (s *Stream) subscribe() *subscription {
	sub := &subscription{
		events: make(chan Event, bufferSize),
	}
	select {
	case s.subcriptions <- sub:
		return sub
	case <-s.done:
		return nil
	}
}

func (s *Stream) Dispatch(ctx context.Context) {
	defer close(s.done)
	var subscribers []*subscription
	for {
		select {
		case sub := <-s.subcriptions:
			// New subscribe
			subscribers = append(subscribers, sub)
		case sub := <-s.unsubcribes:
			// Removed subscriber
			idx := -1
			for i := range subscribers {
				if subscribers[i] == sub {
					idx = i
					break
				}
			}
			if idx != -1 {
				close(subscribers[idx].events)
				subscribers = append(subscribers[:idx], subscribers[idx+1:]...)
			}
		case e := <-s.channel:
			for _, sub := range subscribers {
				select {
				case sub.events <- e:
				default:
					s.observer.Dropped()
				}
			}
		case <-ctx.Done():
			// Terminate
			for _, sub := range subscribers {
				close(sub.events)
			}
			return
		}
	}
}
