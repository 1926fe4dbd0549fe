package mqtt

import (
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
	"github.com/sweeney/river-swww/internal/logic"
)

const (
	clientID       = "river-swww"
	bufferCapacity = 256
	publishTimeout = 5 * time.Second
)

// RealPublisher publishes to an actual MQTT broker. Messages produced while
// the connection is down are buffered and replayed on reconnect.
type RealPublisher struct {
	client    paho.Client
	buffer    *ringBuffer
	log       *logrus.Entry
	connected atomic.Bool
	everUp    atomic.Bool
}

// NewRealPublisher creates a publisher for broker. The connection is made in
// the background and retried until it succeeds.
func NewRealPublisher(broker string, log *logrus.Entry) (*RealPublisher, error) {
	u, err := url.Parse(broker)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid broker address %q", broker)
	}

	p := &RealPublisher{
		buffer: newRingBuffer(bufferCapacity),
		log:    log,
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(WillPayload()), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			p.connected.Store(false)
			p.log.Warnf("mqtt connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	p.client.Connect()
	return p, nil
}

func (p *RealPublisher) onConnect(c paho.Client) {
	p.connected.Store(true)
	reconnect := p.everUp.Swap(true)

	msgs, dropped := p.buffer.drainAll()
	if dropped > 0 {
		p.log.Warnf("mqtt: dropped %d buffered messages while disconnected", dropped)
	}
	if reconnect {
		payload, _ := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: EventReconnected})
		p.send(TopicSystem, 1, false, payload)
	}
	for _, m := range msgs {
		p.send(m.topic, m.qos, m.retained, m.payload)
	}
	p.log.Infof("mqtt connected, replayed %d messages", len(msgs))
}

// Publish sends an applied wallpaper, QoS 0, not retained.
func (p *RealPublisher) Publish(event logic.Applied) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	p.publish(Topic, 0, false, payload)
	return nil
}

// PublishSystem sends a lifecycle event, QoS 1.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	p.publish(TopicSystem, 1, event.Retained, payload)
	return nil
}

func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) {
	if !p.IsConnected() {
		p.buffer.push(bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		return
	}
	p.send(topic, qos, retained, payload)
}

// send hands the message to paho and checks the outcome off the caller's goroutine.
func (p *RealPublisher) send(topic string, qos byte, retained bool, payload []byte) {
	token := p.client.Publish(topic, qos, retained, payload)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			p.log.Warnf("mqtt publish to %s timed out", topic)
			return
		}
		if err := token.Error(); err != nil {
			p.log.Warnf("mqtt publish to %s: %v", topic, err)
		}
	}()
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.connected.Load() && p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second quiesce
	return nil
}
