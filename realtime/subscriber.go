package realtime

import (
	"golang.org/x/time/rate"
)

// NetworkSession is the transport a subscriber listens on.
type NetworkSession interface {
	Close(errCode string)
	Write(data []byte) error
	Read() ([]byte, error)
	Ping() error
}

type subscriber struct {
	session     NetworkSession
	events      <-chan []byte
	pingChan    chan struct{}
	rateLimiter *rate.Limiter
	done        chan struct{}
}

func newSubscriber(session NetworkSession, events <-chan []byte) *subscriber {
	return &subscriber{
		session:     session,
		events:      events,
		pingChan:    make(chan struct{}, 1),
		rateLimiter: rate.NewLimiter(1, 5),
		done:        make(chan struct{}),
	}
}

// ReadPump drains inbound frames. Subscribers are listen-only; anything
// they send beyond protocol chatter is discarded, and a client that
// floods past the rate limit is disconnected.
func (s *subscriber) ReadPump() {
	defer close(s.done)
	for {
		_, err := s.session.Read()
		if err != nil {
			return
		}
		if !s.rateLimiter.Allow() {
			s.session.Close("rate-limit-exceeded")
			return
		}
	}
}

// WritePump forwards hub events to the session until the events channel
// is closed or the peer goes away.
func (s *subscriber) WritePump() {
	for {
		select {
		case data, ok := <-s.events:
			if !ok {
				return
			}
			if err := s.session.Write(data); err != nil {
				return
			}
		case _, ok := <-s.pingChan:
			if !ok {
				return
			}
			if err := s.session.Ping(); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *subscriber) RequestPing() {
	select {
	case s.pingChan <- struct{}{}:
	default:
	}
}
