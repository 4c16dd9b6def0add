package mqtt

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-scada/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-scada/internal/message"
)

// Conn is the subset of pahomqtt.Client used by Client.
// pahomqtt.Client satisfies it; tests substitute a fake.
type Conn interface {
	Connect() pahomqtt.Token
	Disconnect(quiesce uint)
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Subscribe(topic string, qos byte, callback pahomqtt.MessageHandler) pahomqtt.Token
	Unsubscribe(topics ...string) pahomqtt.Token
}

// ConnFactory creates the connection for a set of client options.
type ConnFactory func(opts *pahomqtt.ClientOptions) Conn

// NewPahoConn is the default ConnFactory.
func NewPahoConn(opts *pahomqtt.ClientOptions) Conn {
	return pahomqtt.NewClient(opts)
}

// Sink receives the envelopes a Client produces. Put must be safe to call
// from any goroutine and must not block for long.
type Sink interface {
	Put(env message.Envelope)
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Client owns one broker connection and turns its events into envelopes.
//
// Every connect, connection loss, failed connection attempt and received
// message becomes one envelope put on the Sink. Envelopes from one Client
// carry strictly increasing sequence numbers with no gaps; the number is
// assigned as the envelope is put, so the order on the Sink is the order
// of arrival.
//
// Subscriptions are recorded and reissued in full by SubscribeAll, which the
// runtime calls once per connect event.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - No method waits for the network; acknowledgments are awaited in
//     background goroutines and failures are logged.
type Client struct {
	name string
	cfg  config.MQTTConfig
	conn Conn
	sink Sink

	// subscriptions maps topic filter to QoS.
	subscriptions map[string]byte
	subMu         sync.RWMutex

	seq   uint64
	seqMu sync.Mutex

	connected atomic.Bool
	started   atomic.Bool

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	logger   Logger
	loggerMu sync.RWMutex
}

// NewClient creates a client. Nothing touches the network until Start.
// A nil factory uses paho.
func NewClient(name string, cfg config.MQTTConfig, sink Sink, factory ConnFactory) *Client {
	if factory == nil {
		factory = NewPahoConn
	}

	c := &Client{
		name:          name,
		cfg:           cfg,
		sink:          sink,
		subscriptions: make(map[string]byte),
		stop:          make(chan struct{}),
		logger:        noopLogger{},
	}

	opts := buildClientOptions(name, cfg)
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleConnectionLost(err)
	})
	opts.SetDefaultPublishHandler(c.handleMessage)

	c.conn = factory(opts)
	return c
}

// Name returns the client's registry name.
func (c *Client) Name() string {
	return c.name
}

// QoS returns the configured default QoS.
func (c *Client) QoS() byte {
	return byte(c.cfg.QoS)
}

// SetLogger sets a logger for connection and delivery problems.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// Start begins connecting in the background. Failed attempts are reported
// as TransportConnectFailed envelopes and retried with exponential backoff
// until the first success; after that paho reconnects automatically.
func (c *Client) Start() error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: %s", ErrAlreadyStarted, c.name)
	}
	c.wg.Add(1)
	go c.connectLoop()
	return nil
}

func (c *Client) connectLoop() {
	defer c.wg.Done()

	for attempt := 0; ; attempt++ {
		token := c.conn.Connect()
		select {
		case <-token.Done():
		case <-c.stop:
			return
		}

		err := token.Error()
		if err == nil {
			return
		}

		c.emit(&message.TransportConnectFailed{
			Client: c.name,
			Err:    fmt.Errorf("%w: %w", ErrConnectionFailed, err),
		})

		delay := backoff(c.cfg.Reconnect, attempt)
		c.getLogger().Warn("mqtt connect failed",
			"client", c.name,
			"attempt", attempt+1,
			"retry_in", delay,
			"error", err,
		)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-c.stop:
			timer.Stop()
			return
		}
	}
}

// Stop disconnects and waits for the connect loop. It is idempotent.
func (c *Client) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
		c.wg.Wait()
		if c.started.Load() {
			c.conn.Disconnect(defaultDisconnectQuiesce)
		}
		c.connected.Store(false)
	})
}

// Connected reports the last known connection state.
func (c *Client) Connected() bool {
	return c.connected.Load() && c.conn.IsConnected()
}

func (c *Client) handleConnect() {
	c.connected.Store(true)
	c.getLogger().Info("mqtt connected", "client", c.name)
	c.emit(&message.TransportConnected{Client: c.name})
}

func (c *Client) handleConnectionLost(err error) {
	c.connected.Store(false)
	c.getLogger().Warn("mqtt connection lost", "client", c.name, "error", err)
	c.emit(&message.TransportDisconnected{Client: c.name, Err: err})
}

// handleMessage runs on paho's goroutine. It copies the payload and
// recovers from panics so a bad message cannot kill the connection.
func (c *Client) handleMessage(_ pahomqtt.Client, msg pahomqtt.Message) {
	defer func() {
		if r := recover(); r != nil {
			c.getLogger().Error("MQTT handler panic recovered",
				"client", c.name,
				"topic", msg.Topic(),
				"panic", r,
			)
		}
	}()

	payload := make([]byte, len(msg.Payload()))
	copy(payload, msg.Payload())

	c.emit(&message.TransportMessage{
		Client:   c.name,
		Topic:    msg.Topic(),
		Payload:  payload,
		QoS:      msg.Qos(),
		Retained: msg.Retained(),
	})
}

// emit stamps the next sequence number and puts the envelope. The lock is
// held across Put so numbering and queue order cannot diverge.
func (c *Client) emit(p message.Payload) {
	c.seqMu.Lock()
	defer c.seqMu.Unlock()

	c.seq++
	env := message.New(message.SourceTransport, message.DestinationRuntime, p)
	env.Header.SequenceNumber = c.seq
	c.sink.Put(env)
}

// watch waits for token off the caller's goroutine and logs a failure.
func (c *Client) watch(token pahomqtt.Token, sentinel error, op, topic string) {
	go func() {
		var err error
		if !token.WaitTimeout(defaultPublishTimeout) {
			err = fmt.Errorf("%w: %w after %v", sentinel, ErrTimeout, defaultPublishTimeout)
		} else if terr := token.Error(); terr != nil {
			err = fmt.Errorf("%w: %w", sentinel, terr)
		}
		if err != nil {
			c.getLogger().Warn("mqtt "+op+" failed",
				"client", c.name,
				"topic", topic,
				"error", err,
			)
		}
	}()
}
