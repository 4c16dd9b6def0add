// Package mqtttest provides an in-memory stand-in for a paho connection.
//
// A Broker hands out one Conn per client. Tests plug it into the transport
// through a ConnFactory closure:
//
//	broker := mqtttest.NewBroker()
//	factory := func(o *pahomqtt.ClientOptions) mqtt.Conn { return broker.New(o) }
//
// and then drive the connection with Conn.SimulateConnect,
// Conn.SimulateConnectionLost and Conn.Deliver.
package mqtttest

import (
	"errors"
	"strings"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// ErrRefused is returned by Connect while a Conn is set to refuse.
var ErrRefused = errors.New("mqtttest: connection refused")

// Broker creates and indexes fake connections.
type Broker struct {
	mu    sync.Mutex
	conns []*Conn
}

// NewBroker returns an empty Broker.
func NewBroker() *Broker {
	return &Broker{}
}

// New creates a connection for opts. Its signature fits a ConnFactory
// once wrapped in a closure.
func (b *Broker) New(opts *pahomqtt.ClientOptions) *Conn {
	c := &Conn{opts: opts, handlers: make(map[string]pahomqtt.MessageHandler)}
	b.mu.Lock()
	b.conns = append(b.conns, c)
	b.mu.Unlock()
	return c
}

// Conns returns the connections created so far, oldest first.
func (b *Broker) Conns() []*Conn {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Conn, len(b.conns))
	copy(out, b.conns)
	return out
}

// Conn returns the connection created with the given client id, or nil.
func (b *Broker) Conn(clientID string) *Conn {
	for _, c := range b.Conns() {
		if c.ClientID() == clientID {
			return c
		}
	}
	return nil
}

// Subscription is one recorded Subscribe call.
type Subscription struct {
	Topic string
	QoS   byte
}

// Published is one recorded Publish call.
type Published struct {
	Topic    string
	QoS      byte
	Retained bool
	Payload  []byte
}

// Conn is a fake paho connection. It satisfies the transport's Conn interface.
type Conn struct {
	opts *pahomqtt.ClientOptions

	mu            sync.Mutex
	connected     bool
	refuse        int
	connects      int
	disconnects   int
	subscribes    []Subscription
	unsubscribes  []string
	published     []Published
	handlers      map[string]pahomqtt.MessageHandler
	failPublishes bool
}

// ClientID returns the client id from the options.
func (c *Conn) ClientID() string {
	return c.opts.ClientID
}

// Refuse makes the next n Connect calls fail with ErrRefused.
func (c *Conn) Refuse(n int) {
	c.mu.Lock()
	c.refuse = n
	c.mu.Unlock()
}

// FailPublishes makes Publish tokens complete with an error.
func (c *Conn) FailPublishes(fail bool) {
	c.mu.Lock()
	c.failPublishes = fail
	c.mu.Unlock()
}

// Connect succeeds unless refusing. On success the client's OnConnect
// handler runs before the token completes.
func (c *Conn) Connect() pahomqtt.Token {
	c.mu.Lock()
	c.connects++
	if c.refuse > 0 {
		c.refuse--
		c.mu.Unlock()
		return newToken(ErrRefused)
	}
	c.connected = true
	c.mu.Unlock()

	if c.opts.OnConnect != nil {
		c.opts.OnConnect(nil)
	}
	return newToken(nil)
}

// Disconnect marks the connection closed. Like paho, it does not call
// the connection-lost handler.
func (c *Conn) Disconnect(uint) {
	c.mu.Lock()
	c.connected = false
	c.disconnects++
	c.mu.Unlock()
}

// IsConnected implements pahomqtt.Client.
func (c *Conn) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Publish records the message.
func (c *Conn) Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token {
	var data []byte
	switch p := payload.(type) {
	case []byte:
		data = append([]byte(nil), p...)
	case string:
		data = []byte(p)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, Published{Topic: topic, QoS: qos, Retained: retained, Payload: data})
	if c.failPublishes {
		return newToken(errors.New("mqtttest: publish rejected"))
	}
	return newToken(nil)
}

// Subscribe records the call and the handler.
func (c *Conn) Subscribe(topic string, qos byte, callback pahomqtt.MessageHandler) pahomqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribes = append(c.subscribes, Subscription{Topic: topic, QoS: qos})
	if callback != nil {
		c.handlers[topic] = callback
	}
	return newToken(nil)
}

// Unsubscribe records the call and drops the handlers.
func (c *Conn) Unsubscribe(topics ...string) pahomqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range topics {
		c.unsubscribes = append(c.unsubscribes, t)
		delete(c.handlers, t)
	}
	return newToken(nil)
}

// SimulateConnect marks the connection open and runs OnConnect, as paho
// does after an automatic reconnect.
func (c *Conn) SimulateConnect() {
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	if c.opts.OnConnect != nil {
		c.opts.OnConnect(nil)
	}
}

// SimulateConnectionLost marks the connection closed and runs OnConnectionLost.
func (c *Conn) SimulateConnectionLost(err error) {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
	if c.opts.OnConnectionLost != nil {
		c.opts.OnConnectionLost(nil, err)
	}
}

// Deliver hands a message to the handler of the first matching
// subscription, or to the default publish handler. It reports whether a
// handler ran.
func (c *Conn) Deliver(topic string, payload []byte) bool {
	c.mu.Lock()
	var h pahomqtt.MessageHandler
	for filter, handler := range c.handlers {
		if match(filter, topic) {
			h = handler
			break
		}
	}
	c.mu.Unlock()

	if h == nil {
		h = c.opts.DefaultPublishHandler
	}
	if h == nil {
		return false
	}
	h(nil, &Message{TopicName: topic, Body: payload, QoSLevel: 1})
	return true
}

// Connects returns how many times Connect was called.
func (c *Conn) Connects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connects
}

// Disconnects returns how many times Disconnect was called.
func (c *Conn) Disconnects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnects
}

// Subscribes returns every recorded Subscribe call.
func (c *Conn) Subscribes() []Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Subscription(nil), c.subscribes...)
}

// Unsubscribes returns every recorded Unsubscribe topic.
func (c *Conn) Unsubscribes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.unsubscribes...)
}

// Published returns every recorded Publish call.
func (c *Conn) Published() []Published {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Published(nil), c.published...)
}

// PublishedTo returns the recorded publishes on topic.
func (c *Conn) PublishedTo(topic string) []Published {
	var out []Published
	for _, p := range c.Published() {
		if p.Topic == topic {
			out = append(out, p)
		}
	}
	return out
}

// ResetRecords clears recorded subscribes, unsubscribes and publishes.
func (c *Conn) ResetRecords() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribes = nil
	c.unsubscribes = nil
	c.published = nil
}

// match is MQTT filter matching on '/' levels.
func match(filter, topic string) bool {
	fl := strings.Split(filter, "/")
	tl := strings.Split(topic, "/")
	for i, f := range fl {
		if f == "#" {
			return true
		}
		if i >= len(tl) || (f != "+" && f != tl[i]) {
			return false
		}
	}
	return len(fl) == len(tl)
}

// Token is a completed pahomqtt.Token.
type Token struct {
	err  error
	done chan struct{}
}

func newToken(err error) *Token {
	t := &Token{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

// Wait implements pahomqtt.Token.
func (t *Token) Wait() bool { return true }

// WaitTimeout implements pahomqtt.Token.
func (t *Token) WaitTimeout(time.Duration) bool { return true }

// Done implements pahomqtt.Token.
func (t *Token) Done() <-chan struct{} { return t.done }

// Error implements pahomqtt.Token.
func (t *Token) Error() error { return t.err }

// Message is a pahomqtt.Message with settable fields.
type Message struct {
	TopicName  string
	Body       []byte
	QoSLevel   byte
	IsRetained bool
	ID         uint16
}

func (m *Message) Duplicate() bool   { return false }
func (m *Message) Qos() byte         { return m.QoSLevel }
func (m *Message) Retained() bool    { return m.IsRetained }
func (m *Message) Topic() string     { return m.TopicName }
func (m *Message) MessageID() uint16 { return m.ID }
func (m *Message) Payload() []byte   { return m.Body }
func (m *Message) Ack()              {}
