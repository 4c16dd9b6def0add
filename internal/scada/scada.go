package scada

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-scada/internal/codec"
	"github.com/nerrad567/gray-logic-scada/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-scada/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-scada/internal/layout"
	"github.com/nerrad567/gray-logic-scada/internal/message"
	"github.com/nerrad567/gray-logic-scada/internal/proactor"
)

// Transport names.
const (
	GridworksTransport = "gridworks"
	LocalTransport     = "local"
)

// Logger defines the logging interface used by the core.
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

// Metrics receives the core's diagnostics on top of the runtime's.
type Metrics interface {
	proactor.Metrics
	ContractChanged(alive bool, reason string)
	DispatchHandled(from, aboutNode, diagnostic string)
	StatusPublished(simple, multipurpose, commands int)
	PowerReported(watts int)
}

type noopMetrics struct{}

func (noopMetrics) EnvelopeProcessed(string)               {}
func (noopMetrics) EnvelopeRejected(string, string)        {}
func (noopMetrics) ContractChanged(bool, string)           {}
func (noopMetrics) DispatchHandled(string, string, string) {}
func (noopMetrics) StatusPublished(int, int, int)          {}
func (noopMetrics) PowerReported(int)                      {}

// Options holds optional collaborators. Zero values are usable.
type Options struct {
	Logger  Logger
	Metrics Metrics

	// Now is the clock for timestamps and contract ages. Default time.Now.
	Now func() time.Time

	// ConnFactory builds broker connections. Nil uses paho.
	ConnFactory mqtt.ConnFactory
}

// Scada is the core. Create it with New, add the in-process actors with
// AddActors, then Start.
type Scada struct {
	rt     *proactor.Proactor
	layout *layout.Layout
	name   string

	interval     time.Duration
	strictTuples bool

	data       *data
	contract   *DispatchContract
	instanceID string

	// contractAlive mirrors the last evaluation for other goroutines.
	contractAlive atomic.Bool
	lastReason    string

	now     func() time.Time
	logger  Logger
	metrics Metrics
}

// New builds the core for layout l with the transports and thresholds of
// cfg. Nothing touches the network until Start.
func New(l *layout.Layout, cfg *config.Config, opts Options) (*Scada, error) {
	s := &Scada{
		layout:       l,
		name:         l.Scada().Alias,
		interval:     cfg.ReportInterval(),
		strictTuples: cfg.Scada.StrictTelemetryTuples,
		data:         newData(l),
		contract:     NewDispatchContract(PolicyFromConfig(cfg.DispatchContract)),
		instanceID:   uuid.NewString(),
		lastReason:   ReasonNoContract,
		now:          opts.Now,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = noopLogger{}
	}

	rtOpts := proactor.Options{Logger: s.logger, ConnFactory: opts.ConnFactory}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	} else {
		rtOpts.Metrics = s.metrics
	}

	s.rt = proactor.New(s.name, rtOpts)
	s.rt.SetHandler(s)

	reg := message.DefaultRegistry()
	if _, err := s.rt.AddTransport(LocalTransport, cfg.LocalMQTT, codec.NewLocal(reg, l)); err != nil {
		return nil, fmt.Errorf("%w: %w", proactor.ErrConfig, err)
	}
	if _, err := s.rt.AddTransport(GridworksTransport, cfg.GridworksMQTT, codec.NewGridworks(reg, l.AtnGNodeAlias())); err != nil {
		return nil, fmt.Errorf("%w: %w", proactor.ErrConfig, err)
	}
	if err := s.subscribe(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", proactor.ErrConfig, err)
	}

	s.rt.AddTask(s.statusLoop)
	return s, nil
}

// subscribe records the topics each transport listens to. They are issued
// on every connect.
func (s *Scada) subscribe(cfg *config.Config) error {
	clients := s.rt.Clients()
	atn := s.layout.AtnGNodeAlias()
	for _, typeAlias := range []string{
		message.TypeDispatchBoolean,
		message.TypeCliAtnCmd,
		message.TypeContractHandoff,
	} {
		if err := clients.Subscribe(GridworksTransport, codec.Topic(atn, typeAlias), byte(cfg.GridworksMQTT.QoS)); err != nil {
			return err
		}
	}

	for _, typeAlias := range []string{
		message.TypeTelemetry,
		message.TypeMultipurposeTelemetry,
		message.TypePower,
		message.TypeBooleanActuatorCmd,
	} {
		if err := clients.Subscribe(LocalTransport, mqtt.FromAnySender(typeAlias), byte(cfg.LocalMQTT.QoS)); err != nil {
			return err
		}
	}
	if home, ok := s.layout.HomeAlone(); ok {
		topic := codec.Topic(home.Alias, message.TypeDispatchBooleanLocal)
		if err := clients.Subscribe(LocalTransport, topic, byte(cfg.LocalMQTT.QoS)); err != nil {
			return err
		}
	}
	return nil
}

// AddActors registers in-process actors. Call before Start.
func (s *Scada) AddActors(actors ...proactor.Communicator) error {
	for _, a := range actors {
		if err := s.rt.AddCommunicator(a); err != nil {
			return err
		}
	}
	return nil
}

// Name returns the Scada node alias.
func (s *Scada) Name() string { return s.name }

// Runtime returns the underlying runtime, which actors use as their
// proactor.Services.
func (s *Scada) Runtime() *proactor.Proactor { return s.rt }

// Start starts the transports, actors, status timer and dispatch loop.
func (s *Scada) Start() error {
	if err := s.rt.Start(); err != nil {
		return err
	}
	s.logger.Info("scada started",
		"alias", s.name,
		"atn", s.layout.AtnGNodeAlias(),
		"report_interval", s.interval,
		"instance_id", s.instanceID,
	)
	return nil
}

// Stop stops everything. Idempotent and safe from any goroutine.
func (s *Scada) Stop() { s.rt.Stop() }

// Join waits for everything to finish.
func (s *Scada) Join() error { return s.rt.Join() }

// Stats returns the runtime counters.
func (s *Scada) Stats() proactor.Stats { return s.rt.Stats() }

// ContractAlive reports the last evaluated dispatch contract state.
// Safe from any goroutine.
func (s *Scada) ContractAlive() bool { return s.contractAlive.Load() }

// TurnOn asks the relay at alias to close. Safe from any goroutine.
func (s *Scada) TurnOn(alias string) Diagnostic { return s.turnOnOff(alias, 1) }

// TurnOff asks the relay at alias to open. Safe from any goroutine.
func (s *Scada) TurnOff(alias string) Diagnostic { return s.turnOnOff(alias, 0) }

// turnOnOff is an operator command: it bypasses the dispatch contract.
// The command goes through the queue so the relay is switched from the
// dispatch goroutine.
func (s *Scada) turnOnOff(alias string, state int) Diagnostic {
	n, err := s.layout.Node(alias)
	if err != nil {
		return UnknownDispatchNode
	}
	if !n.IsBooleanActuator() {
		return DispatchNodeNotBooleanActuator
	}
	s.rt.SendThreadsafe(message.New(s.name, s.name, &message.DispatchBooleanLocal{
		RelayState:     state,
		AboutNodeAlias: alias,
		FromNodeAlias:  s.name,
		SendTimeUnixMs: s.now().UnixMilli(),
	}))
	return Success
}

// RequestStatus runs a status cycle now for the current slot. Safe from
// any goroutine.
func (s *Scada) RequestStatus() {
	s.tick(SlotStart(s.now(), s.interval))
}

func (s *Scada) tick(slot time.Time) {
	s.rt.SendThreadsafe(message.New(s.name, s.name, &message.StatusTick{SlotStart: slot}))
}
