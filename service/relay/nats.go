// Package relay mirrors hub broadcasts over NATS so that several gateway
// instances behind one balancer share a single fan-out plane. Each instance
// publishes its local broadcasts and re-injects everyone else's.
package relay

import (
	"encoding/json"

	"github.com/anandbobba/Innovex-Service/logger"
	"github.com/anandbobba/Innovex-Service/service/ws"
	"github.com/anandbobba/Innovex-Service/tools/errs"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const subject = "innovex.requests.events"

type envelope struct {
	Origin string          `json:"origin"`
	Room   string          `json:"room,omitempty"`
	Event  string          `json:"event"`
	Frame  json.RawMessage `json:"frame"`
}

type NatsRelay struct {
	nc     *nats.Conn
	origin string // instance id; own envelopes are skipped on receipt
	sub    *nats.Subscription
}

func Connect(url string) (*NatsRelay, error) {
	nc, err := nats.Connect(url, nats.Name("innovex-gateway"))
	if err != nil {
		return nil, errs.WrapMsg(err, "nats connect url=%s", url)
	}
	return &NatsRelay{nc: nc, origin: uuid.NewString()}, nil
}

// Publish implements ws.Relay.
func (r *NatsRelay) Publish(room, event string, frame []byte) error {
	raw, err := json.Marshal(&envelope{
		Origin: r.origin,
		Room:   room,
		Event:  event,
		Frame:  frame,
	})
	if err != nil {
		return errs.Wrap(err)
	}
	return r.nc.Publish(subject, raw)
}

// Start subscribes and feeds remote frames into the local hub.
func (r *NatsRelay) Start(hub *ws.Hub) error {
	sub, err := r.nc.Subscribe(subject, func(m *nats.Msg) {
		var env envelope
		if err := json.Unmarshal(m.Data, &env); err != nil {
			logger.Errorf("[relay] bad envelope: %v", err)
			return
		}
		if env.Origin == r.origin {
			return
		}
		hub.DeliverLocal(env.Room, env.Frame)
	})
	if err != nil {
		return errs.WrapMsg(err, "nats subscribe subject=%s", subject)
	}
	r.sub = sub
	return nil
}

func (r *NatsRelay) Close() {
	if r.sub != nil {
		_ = r.sub.Unsubscribe()
	}
	r.nc.Close()
}
