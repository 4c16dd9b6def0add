package proactor

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nerrad567/gray-logic-scada/internal/codec"
	"github.com/nerrad567/gray-logic-scada/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-scada/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-scada/internal/message"
)

// Options configures a Proactor. Zero values are usable.
type Options struct {
	Logger  Logger
	Metrics Metrics

	// ConnFactory builds transport connections. Nil uses paho.
	ConnFactory mqtt.ConnFactory
}

// Task is a goroutine owned by the runtime. It must return once stop is
// closed.
type Task func(stop <-chan struct{}) error

// Stats is a snapshot of dispatch counters.
type Stats struct {
	Processed      uint64
	Rejected       uint64
	ProtocolErrors uint64
	LogicErrors    uint64
	RuntimeErrors  uint64
	ConfigErrors   uint64
}

// Proactor is the event runtime. See the package documentation.
type Proactor struct {
	name    string
	queue   *Queue
	clients *mqtt.Clients
	logger  Logger
	metrics Metrics
	handler Handler

	mu            sync.RWMutex
	codecs        map[string]codec.Codec
	communicators map[string]Communicator
	order         []string
	tasks         []Task
	tasksRunning  bool

	processed      atomic.Uint64
	rejected       atomic.Uint64
	protocolErrors atomic.Uint64
	logicErrors    atomic.Uint64
	runtimeErrors  atomic.Uint64
	configErrors   atomic.Uint64

	lifeMu   sync.Mutex
	started  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	// transportsDone is closed once StopAll has returned.
	transportsDone chan struct{}

	taskWG   sync.WaitGroup
	taskMu   sync.Mutex
	taskErrs []error
}

// New creates a runtime named name. Nothing runs until Start.
func New(name string, opts Options) *Proactor {
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}

	p := &Proactor{
		name:          name,
		queue:         NewQueue(),
		logger:        logger,
		metrics:       metrics,
		codecs:        make(map[string]codec.Codec),
		communicators: make(map[string]Communicator),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),

		transportsDone: make(chan struct{}),
	}
	p.clients = mqtt.NewClients(p.queue, opts.ConnFactory)
	p.clients.SetLogger(logger)
	return p
}

// Name returns the runtime's alias.
func (p *Proactor) Name() string {
	return p.name
}

// SetHandler sets the application handler. Call before Start.
func (p *Proactor) SetHandler(h Handler) {
	p.handler = h
}

// Clients returns the transport registry.
func (p *Proactor) Clients() *mqtt.Clients {
	return p.clients
}

// AddTransport registers a transport client. A nil codec passes received
// messages through undecoded.
func (p *Proactor) AddTransport(name string, cfg config.MQTTConfig, c codec.Codec) (*mqtt.Client, error) {
	client, err := p.clients.Add(name, cfg)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	if c != nil {
		p.codecs[name] = c
	}
	p.mu.Unlock()
	return client, nil
}

// AddCommunicator registers c under c.Name().
func (p *Proactor) AddCommunicator(c Communicator) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	name := c.Name()
	if _, ok := p.communicators[name]; ok || name == p.name {
		return fmt.Errorf("%w: %s", ErrDuplicateCommunicator, name)
	}
	p.communicators[name] = c
	p.order = append(p.order, name)
	return nil
}

// Communicator returns the communicator registered under name.
func (p *Proactor) Communicator(name string) (Communicator, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	c, ok := p.communicators[name]
	return c, ok
}

// Connected reports whether the named transport, or a communicator that
// owns a connection, is connected. Unknown names report false.
func (p *Proactor) Connected(name string) bool {
	if c, err := p.clients.Client(name); err == nil {
		return c.Connected()
	}
	if c, ok := p.Communicator(name); ok {
		if hc, ok := c.(HasConnectionStatus); ok {
			return hc.Connected()
		}
	}
	return false
}

// AddTask registers a goroutine started with the runtime. A task added
// after Start is started immediately.
func (p *Proactor) AddTask(t Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, t)
	if p.tasksRunning {
		p.runTask(t)
	}
}

// Send enqueues env.
func (p *Proactor) Send(env message.Envelope) {
	p.queue.Put(env)
}

// SendThreadsafe enqueues env. The queue is safe for concurrent use, so
// this is Send under a name that documents intent at call sites off the
// dispatch goroutine.
func (p *Proactor) SendThreadsafe(env message.Envelope) {
	p.queue.Put(env)
}

// Pending returns the number of queued envelopes.
func (p *Proactor) Pending() int {
	return p.queue.Len()
}

// Publish encodes pl with the transport's codec and publishes it on
// "{src}/{typeAlias}" at the transport's default QoS.
func (p *Proactor) Publish(transport, src string, pl message.Payload) error {
	p.mu.RLock()
	c, ok := p.codecs[transport]
	p.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoCodec, transport)
	}

	client, err := p.clients.Client(transport)
	if err != nil {
		return err
	}
	data, err := c.Encode(pl)
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", ErrRuntime, pl.TypeAlias(), err)
	}
	return client.Publish(codec.Topic(src, pl.TypeAlias()), data, client.QoS(), false)
}

// Start starts communicators with their own lifecycle, the transport
// clients, registered tasks and the dispatch loop.
func (p *Proactor) Start() error {
	if p.handler == nil {
		return ErrNoHandler
	}
	if err := p.markStarted(); err != nil {
		return err
	}

	for _, r := range p.runnables() {
		if err := r.Start(); err != nil {
			return fmt.Errorf("starting %s: %w", r.Name(), err)
		}
	}
	if err := p.clients.StartAll(); err != nil {
		return err
	}

	p.mu.Lock()
	p.tasksRunning = true
	for _, t := range p.tasks {
		p.runTask(t)
	}
	p.mu.Unlock()

	p.logger.Info("runtime started",
		"name", p.name,
		"transports", p.clients.Names(),
		"communicators", len(p.order),
	)
	return nil
}

// Stop signals everything to stop. It is idempotent, does not wait, and
// is safe to call from a handler.
func (p *Proactor) Stop() {
	p.stopOnce.Do(func() {
		p.lifeMu.Lock()
		close(p.stop)
		started := p.started.Load()
		if !started {
			close(p.done)
			close(p.transportsDone)
		}
		p.lifeMu.Unlock()
		if !started {
			return
		}
		for _, r := range p.runnables() {
			stopRunnable(r, p.logger)
		}
		go func() {
			defer close(p.transportsDone)
			if err := p.clients.StopAll(); err != nil {
				p.logger.Warn("stopping transports", "error", err)
			}
		}()
	})
}

// Join waits for the dispatch loop, transports, tasks and runnables to
// finish and returns their errors joined.
func (p *Proactor) Join() error {
	<-p.done
	<-p.transportsDone
	p.taskWG.Wait()

	p.taskMu.Lock()
	errs := append([]error(nil), p.taskErrs...)
	p.taskMu.Unlock()

	if p.started.Load() {
		for _, r := range p.runnables() {
			if err := r.Join(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}

// Stats returns a snapshot of the dispatch counters.
func (p *Proactor) Stats() Stats {
	return Stats{
		Processed:      p.processed.Load(),
		Rejected:       p.rejected.Load(),
		ProtocolErrors: p.protocolErrors.Load(),
		LogicErrors:    p.logicErrors.Load(),
		RuntimeErrors:  p.runtimeErrors.Load(),
		ConfigErrors:   p.configErrors.Load(),
	}
}

// Drain dispatches every queued envelope on the calling goroutine,
// including envelopes enqueued while draining, and returns how many it
// handled. It must not be used while the dispatch loop is running.
func (p *Proactor) Drain() int {
	n := 0
	for {
		env, ok := p.queue.TryGet()
		if !ok {
			return n
		}
		p.dispatch(env)
		n++
	}
}

// markStarted flips the runtime to started and launches the dispatch loop.
func (p *Proactor) markStarted() error {
	p.lifeMu.Lock()
	defer p.lifeMu.Unlock()

	select {
	case <-p.stop:
		return ErrStopped
	default:
	}
	if p.started.Load() {
		return ErrAlreadyStarted
	}
	p.started.Store(true)
	go p.loop()
	return nil
}

func (p *Proactor) loop() {
	defer close(p.done)
	for {
		env, ok := p.queue.Get(p.stop)
		if !ok {
			p.logger.Info("runtime stopped", "name", p.name, "pending", p.queue.Len())
			return
		}
		p.dispatch(env)
	}
}

func (p *Proactor) dispatch(env message.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			p.reject(env, fmt.Errorf("%w: %w: %v", ErrRuntime, ErrHandlerPanic, r))
		}
	}()

	if err := p.route(env); err != nil {
		p.reject(env, err)
		return
	}
	p.processed.Add(1)
	p.metrics.EnvelopeProcessed(env.Header.MessageType)
}

func (p *Proactor) route(env message.Envelope) error {
	switch message.CategoryOf(env) {
	case message.CategoryTransportConnected:
		ev, ok := env.Payload.(*message.TransportConnected)
		if !ok {
			return fmt.Errorf("%w: %T", ErrUnhandledPayload, env.Payload)
		}
		return p.clients.SubscribeAll(ev.Client)

	case message.CategoryTransportDisconnected:
		if ev, ok := env.Payload.(*message.TransportDisconnected); ok {
			p.logger.Warn("transport disconnected", "client", ev.Client, "error", ev.Err)
		}
		return nil

	case message.CategoryTransportConnectFailed:
		if ev, ok := env.Payload.(*message.TransportConnectFailed); ok {
			p.logger.Debug("transport connect failed", "client", ev.Client, "error", ev.Err)
		}
		return nil

	case message.CategoryTransportMessage:
		return p.routeTransportMessage(env)

	default:
		return p.routeApplication(env)
	}
}

func (p *Proactor) routeTransportMessage(env message.Envelope) error {
	tm, ok := env.Payload.(*message.TransportMessage)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnhandledPayload, env.Payload)
	}

	p.mu.RLock()
	c, ok := p.codecs[tm.Client]
	p.mu.RUnlock()

	decoded := codec.Decoded{Payload: tm}
	if ok {
		var err error
		decoded, err = c.Decode(tm.Topic, tm.Payload)
		if err != nil {
			return fmt.Errorf("client %s topic %s: %w", tm.Client, tm.Topic, err)
		}
	}
	return p.handler.ProcessTransportMessage(env, decoded)
}

func (p *Proactor) routeApplication(env message.Envelope) error {
	dst := env.Header.Dst
	if dst == p.name || dst == message.DestinationRuntime {
		return p.handler.ProcessApplication(env)
	}
	if c, ok := p.Communicator(dst); ok {
		return c.ProcessMessage(env)
	}
	return fmt.Errorf("%w: %s", ErrUnknownDestination, dst)
}

func (p *Proactor) reject(env message.Envelope, err error) {
	kind := KindOf(err)
	p.rejected.Add(1)
	switch kind {
	case KindProtocol:
		p.protocolErrors.Add(1)
	case KindLogic:
		p.logicErrors.Add(1)
	case KindConfig:
		p.configErrors.Add(1)
	default:
		p.runtimeErrors.Add(1)
	}
	p.metrics.EnvelopeRejected(kind, err.Error())

	args := []any{
		"kind", kind,
		"message_type", env.Header.MessageType,
		"src", env.Header.Src,
		"dst", env.Header.Dst,
		"sequence", env.Header.SequenceNumber,
		"error", err,
	}
	if tm, ok := env.Payload.(*message.TransportMessage); ok {
		args = append(args, "client", tm.Client, "topic", tm.Topic)
	}
	p.logger.Warn("envelope rejected", args...)
}

func (p *Proactor) runTask(t Task) {
	p.taskWG.Add(1)
	go func() {
		defer p.taskWG.Done()
		if err := t(p.stop); err != nil {
			p.taskMu.Lock()
			p.taskErrs = append(p.taskErrs, err)
			p.taskMu.Unlock()
		}
	}()
}

func (p *Proactor) runnables() []Runnable {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []Runnable
	for _, name := range p.order {
		if r, ok := p.communicators[name].(Runnable); ok {
			out = append(out, r)
		}
	}
	return out
}

func stopRunnable(r Runnable, logger Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic stopping communicator", "name", r.Name(), "panic", rec)
		}
	}()
	r.Stop()
}
