package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const defaultPublishTimeout = 20 * time.Second

type Publisher[E any] interface {
	Publish(evt E)
}

type Subscriber[E any] interface {
	Subscribe(ctx context.Context) Subscription[E]
}

type Subscription[E any] interface {
	ResultChan() <-chan E
	Stop()
}

// PubSub fans events out to all subscribers in publish order.
// A subscriber that does not accept an event within the publish timeout is dropped.
type PubSub[E any] struct {
	mutex          sync.RWMutex
	subscriptions  map[int64]*subscription[E]
	seq            int64
	stopped        bool
	publishTimeout time.Duration
}

func New[E any]() *PubSub[E] {
	return &PubSub[E]{
		subscriptions:  map[int64]*subscription[E]{},
		publishTimeout: defaultPublishTimeout,
	}
}

// WithPublishTimeout sets the time a subscriber is given to accept an event.
func (p *PubSub[E]) WithPublishTimeout(d time.Duration) *PubSub[E] {
	p.publishTimeout = d
	return p
}

func (p *PubSub[E]) Stop() {
	p.mutex.Lock()
	p.stopped = true
	subscriptions := make([]*subscription[E], 0, len(p.subscriptions))
	for _, s := range p.subscriptions {
		subscriptions = append(subscriptions, s)
	}
	p.mutex.Unlock()

	for _, s := range subscriptions {
		s.Stop()
	}
}

func (p *PubSub[E]) Subscribe(ctx context.Context) Subscription[E] {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.stopped {
		return noopSubscription[E]("noop-subscription")
	}

	p.seq++

	ctx, cancel := context.WithCancel(ctx)
	s := &subscription[E]{
		id:     p.seq,
		cancel: cancel,
		pubsub: p,
		ch:     make(chan E, 10),
	}
	p.subscriptions[s.id] = s

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return s
}

func (p *PubSub[E]) Publish(evt E) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	if p.stopped {
		return
	}

	for _, s := range p.subscriptions {
		if s.ch == nil {
			continue
		}

		select {
		case s.ch <- evt:
		case <-time.After(p.publishTimeout):
			slog.Warn(fmt.Sprintf("dropping subscriber %d since it did not accept the event within %s", s.id, p.publishTimeout))
			go s.Stop()
		}
	}
}

type subscription[E any] struct {
	pubsub *PubSub[E]
	id     int64
	cancel context.CancelFunc
	ch     chan E
}

func (s *subscription[E]) Stop() {
	s.pubsub.mutex.Lock()
	delete(s.pubsub.subscriptions, s.id)
	ch := s.ch
	s.ch = nil
	s.pubsub.mutex.Unlock()

	if ch != nil {
		close(ch)
		s.cancel()
	}
}

func (s *subscription[E]) ResultChan() <-chan E {
	s.pubsub.mutex.RLock()
	defer s.pubsub.mutex.RUnlock()

	if s.ch == nil {
		ch := make(chan E)
		close(ch)
		return ch
	}

	return s.ch
}

type noopSubscription[E any] string

func (_ noopSubscription[E]) Stop() {}

func (_ noopSubscription[E]) ResultChan() <-chan E {
	ch := make(chan E)
	close(ch)
	return ch
}
