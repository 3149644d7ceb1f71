package testutil

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/Skotchmaster/storefront/internal/email"
	"github.com/Skotchmaster/storefront/internal/mykafka"
)

var ErrSendFailed = errors.New("smtp unavailable")

// Mailer records sent messages and fails after SetFail(true).
type Mailer struct {
	mu   sync.Mutex
	sent []email.Message
	fail bool
}

func (m *Mailer) Send(_ context.Context, msg *email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return ErrSendFailed
	}
	m.sent = append(m.sent, *msg)
	return nil
}

func (m *Mailer) SetFail(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = v
}

func (m *Mailer) Sent() []email.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]email.Message(nil), m.sent...)
}

// LastToken extracts the token query parameter from the last link sent to addr.
func (m *Mailer) LastToken(addr string) string {
	sent := m.Sent()
	for i := len(sent) - 1; i >= 0; i-- {
		if sent[i].To != addr {
			continue
		}
		idx := strings.Index(sent[i].TextBody, "http")
		if idx < 0 {
			return ""
		}
		link := strings.Fields(sent[i].TextBody[idx:])[0]
		u, err := url.Parse(link)
		if err != nil {
			return ""
		}
		return u.Query().Get("token")
	}
	return ""
}

type Published struct {
	Topic string
	Key   string
	Event mykafka.Event
}

// Recorder is an in-memory mykafka.Publisher.
type Recorder struct {
	mu     sync.Mutex
	events []Published
}

func (r *Recorder) PublishEvent(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, _ := event.(mykafka.Event)
	r.events = append(r.events, Published{Topic: topic, Key: key, Event: ev})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.events...)
}

// Types lists event types published to topic, in order.
func (r *Recorder) Types(topic string) []string {
	var out []string
	for _, p := range r.Events() {
		if p.Topic == topic {
			out = append(out, p.Event.Type)
		}
	}
	return out
}
