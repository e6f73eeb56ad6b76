package communication

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/NethermindEth/chaoschain-reality/core"
)

// AllShowsSubject matches every show's event subject.
const AllShowsSubject = "show.*.events"

// ShowSubject is the subject a show's events are published on.
func ShowSubject(showID string) string {
	return fmt.Sprintf("show.%s.events", showID)
}

// Messenger encapsulates a NATS connection.
type Messenger struct {
	NC *nats.Conn
}

// NewMessenger connects to the NATS server at url.
func NewMessenger(url, name string) (*Messenger, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(10*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS at %s", url)
	return &Messenger{NC: nc}, nil
}

// PublishEvent publishes evt on its show's subject.
func (m *Messenger) PublishEvent(evt core.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return m.NC.Publish(ShowSubject(evt.ShowID), data)
}

// SubscribeShow delivers one show's events to handler. An empty id or "*"
// subscribes to every show.
func (m *Messenger) SubscribeShow(showID string, handler func(core.Event)) (*nats.Subscription, error) {
	subject := AllShowsSubject
	if showID != "" && showID != "*" {
		subject = ShowSubject(showID)
	}
	return m.NC.Subscribe(subject, func(msg *nats.Msg) {
		var evt core.Event
		if err := json.Unmarshal(msg.Data, &evt); err != nil {
			log.Printf("Dropping malformed event on %s: %v", msg.Subject, err)
			return
		}
		handler(evt)
	})
}

// Flush waits for the server to acknowledge pending publishes.
func (m *Messenger) Flush() error {
	return m.NC.Flush()
}

// Close drains and closes the connection.
func (m *Messenger) Close() {
	if err := m.NC.Drain(); err != nil {
		m.NC.Close()
	}
}
