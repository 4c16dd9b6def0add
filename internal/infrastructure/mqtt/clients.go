package mqtt

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-scada/internal/infrastructure/config"
)

// Clients is a named set of Clients sharing one Sink.
//
// All methods are safe for concurrent use. Lookups by an unregistered
// name fail with ErrUnknownClient.
type Clients struct {
	sink    Sink
	factory ConnFactory
	logger  Logger

	mu      sync.RWMutex
	clients map[string]*Client
	order   []string
}

// NewClients creates an empty registry. A nil factory uses paho.
func NewClients(sink Sink, factory ConnFactory) *Clients {
	return &Clients{
		sink:    sink,
		factory: factory,
		logger:  noopLogger{},
		clients: make(map[string]*Client),
	}
}

// SetLogger sets the logger given to clients added afterwards.
func (cs *Clients) SetLogger(logger Logger) {
	cs.mu.Lock()
	cs.logger = logger
	cs.mu.Unlock()
}

// Add creates and registers a client.
func (cs *Clients) Add(name string, cfg config.MQTTConfig) (*Client, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if _, ok := cs.clients[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	c := NewClient(name, cfg, cs.sink, cs.factory)
	c.SetLogger(cs.logger)
	cs.clients[name] = c
	cs.order = append(cs.order, name)
	return c, nil
}

// Client returns the client registered under name.
func (cs *Clients) Client(name string) (*Client, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	c, ok := cs.clients[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClient, name)
	}
	return c, nil
}

// Has reports whether a client is registered under name.
func (cs *Clients) Has(name string) bool {
	_, err := cs.Client(name)
	return err == nil
}

// Names returns client names in registration order.
func (cs *Clients) Names() []string {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make([]string, len(cs.order))
	copy(out, cs.order)
	return out
}

// Publish publishes on the named client.
func (cs *Clients) Publish(name, topic string, payload []byte, qos byte) error {
	c, err := cs.Client(name)
	if err != nil {
		return err
	}
	return c.Publish(topic, payload, qos, false)
}

// Subscribe records a subscription on the named client.
func (cs *Clients) Subscribe(name, topic string, qos byte) error {
	c, err := cs.Client(name)
	if err != nil {
		return err
	}
	return c.Subscribe(topic, qos)
}

// SubscribeAll reissues the named client's subscriptions.
func (cs *Clients) SubscribeAll(name string) error {
	c, err := cs.Client(name)
	if err != nil {
		return err
	}
	return c.SubscribeAll()
}

// Unsubscribe removes a subscription on the named client.
func (cs *Clients) Unsubscribe(name, topic string) error {
	c, err := cs.Client(name)
	if err != nil {
		return err
	}
	return c.Unsubscribe(topic)
}

// StartAll starts every client, in registration order.
func (cs *Clients) StartAll() error {
	var errs []error
	for _, c := range cs.all() {
		if err := c.Start(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StopAll stops every client. A panic while stopping one client is
// recovered and reported; the remaining clients are still stopped.
func (cs *Clients) StopAll() error {
	var errs []error
	for _, c := range cs.all() {
		if err := stopClient(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func stopClient(c *Client) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stopping %s: panic: %v", c.Name(), r)
		}
	}()
	c.Stop()
	return nil
}

func (cs *Clients) all() []*Client {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make([]*Client, 0, len(cs.order))
	for _, name := range cs.order {
		out = append(out, cs.clients[name])
	}
	return out
}
