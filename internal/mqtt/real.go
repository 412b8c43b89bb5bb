package mqtt

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	outboxSize     = 64
)

// RealPublisher publishes to an actual MQTT broker. Messages published
// while the connection is down are held in an outbox and replayed, oldest
// first, when paho reconnects.
type RealPublisher struct {
	client   paho.Client
	outbox   *outbox
	connects atomic.Int32
	now      func() time.Time
}

// NewRealPublisher connects to broker. If the broker does not answer within
// the connect timeout the publisher is still returned: paho keeps retrying
// in the background and publishes are queued until it succeeds.
func NewRealPublisher(broker, clientID string) (*RealPublisher, error) {
	p := &RealPublisher{outbox: newOutbox(outboxSize), now: time.Now}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "OFFLINE",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		log.Printf("mqtt: broker %s not reachable yet, queueing until connected", broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return p, nil
}

// newPublisherWithClient wires a publisher around an existing client.
func newPublisherWithClient(c paho.Client, size int) *RealPublisher {
	return &RealPublisher{client: c, outbox: newOutbox(size), now: time.Now}
}

// PublishSignal sends a signal-health transition. QoS 1, not retained.
func (p *RealPublisher) PublishSignal(event SignalEvent) error {
	payload, err := FormatSignalPayload(event)
	if err != nil {
		return fmt.Errorf("format signal payload: %w", err)
	}
	p.send(message{topic: TopicSignal, payload: payload, qos: 1})
	return nil
}

// PublishSystem sends a system lifecycle event. QoS 1.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	p.send(message{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker after waiting briefly for in-flight
// messages. Anything still queued is dropped.
func (p *RealPublisher) Close() error {
	if n := p.outbox.len(); n > 0 {
		log.Printf("mqtt: closing with %d undelivered messages", n)
	}
	p.client.Disconnect(1000)
	return nil
}

// send hands m to paho without waiting for the broker. Completion is
// checked on a separate goroutine so a slow broker never stalls the caller.
func (p *RealPublisher) send(m message) {
	if !p.client.IsConnectionOpen() {
		p.outbox.add(m)
		return
	}
	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			log.Printf("mqtt: publish to %s timed out", m.topic)
			return
		}
		if err := token.Error(); err != nil {
			log.Printf("mqtt: publish to %s: %v", m.topic, err)
		}
	}()
}

// onConnect replays the outbox and, on reconnects, announces the recovery.
func (p *RealPublisher) onConnect(_ paho.Client) {
	n := p.connects.Add(1)
	msgs, dropped := p.outbox.take()
	if n > 1 {
		log.Printf("mqtt: reconnected, replaying %d messages (%d dropped)", len(msgs), dropped)
	} else if len(msgs) > 0 {
		log.Printf("mqtt: connected, replaying %d messages", len(msgs))
	}
	for _, m := range msgs {
		p.send(m)
	}
	if n > 1 {
		payload, err := FormatSystemPayload(SystemEvent{Timestamp: p.now(), Event: "RECONNECTED"})
		if err == nil {
			p.send(message{topic: TopicSystem, payload: payload, qos: 1})
		}
	}
}
