package live

import (
	"encoding/json"

	"github.com/nats-io/nats.go"

	"github.com/avalonarena/spectate/internal/logging"
	"github.com/avalonarena/spectate/internal/protocol"
)

// Publisher is where the event tap republishes inbound events. The NATS
// implementation is the real one; tests substitute their own.
type Publisher interface {
	Publish(subject string, data []byte) error
	Close()
}

// NATSTap publishes events to a NATS server.
type NATSTap struct {
	conn *nats.Conn
}

// NewNATSTap connects to the NATS server at url. An empty url means the
// default local server.
func NewNATSTap(url string) (*NATSTap, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	conn, err := nats.Connect(url,
		nats.Name("avalon-spectate"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	return &NATSTap{conn: conn}, nil
}

// Publish sends one event frame.
func (t *NATSTap) Publish(subject string, data []byte) error {
	return t.conn.Publish(subject, data)
}

// Close flushes and closes the connection.
func (t *NATSTap) Close() {
	if err := t.conn.Drain(); err != nil {
		t.conn.Close()
	}
}

// AttachTap republishes every inbound event under subject.<event_type>.
// Publish failures are logged and never interrupt the feed. The returned id
// detaches the tap via Off.
func AttachTap(c *Client, pub Publisher, subject string, log *logging.Logger) int {
	return c.On(protocol.Wildcard, func(env *protocol.Envelope, _ any) {
		data, err := json.Marshal(env)
		if err != nil {
			return
		}
		subj := subject + "." + env.Type
		if err := pub.Publish(subj, data); err != nil {
			log.TapError(subj, err)
		}
	})
}
