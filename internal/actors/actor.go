package actors

import (
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-scada/internal/layout"
	"github.com/nerrad567/gray-logic-scada/internal/message"
	"github.com/nerrad567/gray-logic-scada/internal/proactor"
)

const defaultInboxSize = 32

// Logger defines the logging interface used by actors.
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

// Options holds settings shared by all actors. Zero values are usable.
type Options struct {
	Logger Logger

	// Now is the clock used for read and command timestamps. Default time.Now.
	Now func() time.Time

	// AsyncPowerReportThreshold is the relative power change that makes
	// the power meter report immediately. Default 0.05.
	AsyncPowerReportThreshold float64

	// SamplePeriod overrides every node's reporting_sample_period_s.
	SamplePeriod time.Duration
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = noopLogger{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.AsyncPowerReportThreshold <= 0 {
		o.AsyncPowerReportThreshold = 0.05
	}
	return o
}

// base is the lifecycle shared by every actor: one goroutine running loop
// until Stop.
type base struct {
	node     layout.Node
	services proactor.Services
	opts     Options

	inbox    chan message.Envelope
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  bool
	mu       sync.Mutex
}

func (b *base) init(node layout.Node, services proactor.Services, opts Options) {
	b.node = node
	b.services = services
	b.opts = opts
	b.inbox = make(chan message.Envelope, defaultInboxSize)
	b.stop = make(chan struct{})
	b.done = make(chan struct{})
}

// Name implements proactor.Communicator.
func (b *base) Name() string { return b.node.Alias }

// Node returns the layout node the actor runs for.
func (b *base) Node() layout.Node { return b.node }

// enqueue hands env to the actor goroutine without blocking.
func (b *base) enqueue(env message.Envelope) error {
	select {
	case <-b.stop:
		return ErrNotRunning
	default:
	}
	select {
	case b.inbox <- env:
		return nil
	default:
		return ErrInboxFull
	}
}

// start runs loop on its own goroutine.
func (b *base) start(loop func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return nil
	}
	b.started = true
	go func() {
		defer close(b.done)
		loop()
	}()
	return nil
}

// Stop implements proactor.Runnable.
func (b *base) Stop() {
	b.stopOnce.Do(func() { close(b.stop) })
}

// Join implements proactor.Runnable.
func (b *base) Join() error {
	b.mu.Lock()
	started := b.started
	b.mu.Unlock()
	if !started {
		return nil
	}
	<-b.done
	return nil
}

// send delivers p to the runtime from the actor goroutine.
func (b *base) send(p message.Payload) {
	b.services.SendThreadsafe(message.New(b.node.Alias, b.services.Name(), p))
}

func (b *base) nowMs() int64 {
	return b.opts.Now().UnixMilli()
}

// period returns how often the actor samples its driver.
func (b *base) period() time.Duration {
	if b.opts.SamplePeriod > 0 {
		return b.opts.SamplePeriod
	}
	if b.node.ReportingSamplePeriodS > 0 {
		return time.Duration(b.node.ReportingSamplePeriodS) * time.Second
	}
	return time.Second
}

// sampleLoop calls sample every period until stopped.
func (b *base) sampleLoop(sample func() error) {
	ticker := time.NewTicker(b.period())
	defer ticker.Stop()
	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			if err := sample(); err != nil {
				b.opts.Logger.Warn("sample failed", "node", b.node.Alias, "error", err)
			}
		}
	}
}
