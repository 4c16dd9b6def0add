package scada

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-scada/internal/codec"
	"github.com/nerrad567/gray-logic-scada/internal/layout"
	"github.com/nerrad567/gray-logic-scada/internal/message"
	"github.com/nerrad567/gray-logic-scada/internal/proactor"
)

// ProcessTransportMessage implements proactor.Handler.
func (s *Scada) ProcessTransportMessage(env message.Envelope, decoded codec.Decoded) error {
	tm, ok := env.Payload.(*message.TransportMessage)
	if !ok {
		return fmt.Errorf("%w: %T", proactor.ErrUnhandledPayload, env.Payload)
	}

	switch tm.Client {
	case GridworksTransport:
		return s.processFromAtn(decoded.Payload)
	case LocalTransport:
		return s.processFromNode(decoded.Source, decoded.Payload)
	default:
		return fmt.Errorf("%w: %s topic %s", ErrUnexpectedTransport, tm.Client, tm.Topic)
	}
}

// ProcessApplication implements proactor.Handler.
func (s *Scada) ProcessApplication(env message.Envelope) error {
	switch p := env.Payload.(type) {
	case *message.StatusTick:
		return s.sendStatus(p.SlotStart)
	case *message.DispatchBooleanLocal:
		if env.Header.Src == s.name {
			_, err := s.forwardDispatch(p.AboutNodeAlias, p.RelayState, s.name)
			return err
		}
	}
	return s.processFromNode(env.Header.Src, env.Payload)
}

// processFromAtn handles a message the gridworks codec accepted, so the
// sender is known to be the Atn.
func (s *Scada) processFromAtn(p message.Payload) error {
	now := s.now()
	s.contract.AtnHeard(now)

	switch p := p.(type) {
	case *message.DispatchBoolean:
		if p.SendTimeUnixMs > 0 {
			s.contract.DispatchLatency(time.UnixMilli(p.SendTimeUnixMs), now)
		}
		_, err := s.atnDispatch(p)
		return err
	case *message.CliAtnCmd:
		s.evaluateContract()
		if !p.SendSnapshot {
			return nil
		}
		return s.publishGridworks(s.makeSnapshot())
	case *message.ContractHandoff:
		err := s.contract.Handoff(p.Action)
		s.evaluateContract()
		return err
	default:
		return fmt.Errorf("%w: %T from atn", proactor.ErrUnhandledPayload, p)
	}
}

// processFromNode handles a message from a house node, in process or on
// the local broker, after checking the node may send it.
func (s *Scada) processFromNode(src string, p message.Payload) error {
	from, err := s.layout.Node(src)
	if err != nil {
		return fmt.Errorf("%w: %s is not in the layout", ErrWrongSender, src)
	}

	switch p := p.(type) {
	case *message.Power:
		meter, ok := s.layout.PowerMeter()
		if !ok || meter.Alias != src {
			return fmt.Errorf("%w: power from %s", ErrWrongSender, src)
		}
		return s.powerReceived(p)

	case *message.DispatchBooleanLocal:
		home, ok := s.layout.HomeAlone()
		if !ok || home.Alias != src {
			return fmt.Errorf("%w: local dispatch from %s", ErrWrongSender, src)
		}
		_, err := s.localDispatch(p)
		return err

	case *message.Telemetry:
		if !s.data.tracksSimple(src) {
			return fmt.Errorf("%w: telemetry from %s", ErrWrongSender, src)
		}
		s.data.recordSimple(src, p.Value, p.ScadaReadTimeUnixMs)
		return nil

	case *message.MultipurposeTelemetry:
		if from.ActorClass != layout.ActorPowerMeter {
			return fmt.Errorf("%w: multipurpose telemetry from %s", ErrWrongSender, src)
		}
		return s.multipurposeReceived(src, p)

	case *message.BooleanActuatorCmd:
		if !s.data.tracksCommands(src) || p.ShNodeAlias != src {
			return fmt.Errorf("%w: relay command record from %s about %s", ErrWrongSender, src, p.ShNodeAlias)
		}
		s.data.recordCommand(src, p.RelayState, p.CommandTimeUnixMs)
		return nil

	default:
		return fmt.Errorf("%w: %T from %s", proactor.ErrUnhandledPayload, p, src)
	}
}

// powerReceived forwards the reading to the cloud at once and keeps it as
// the latest total. It also attests that metering works.
func (s *Scada) powerReceived(p *message.Power) error {
	s.data.recordPower(p.Power)
	s.contract.PowerReported(s.now())
	s.metrics.PowerReported(p.Power)
	s.evaluateContract()
	return s.publishGridworks(p)
}

func (s *Scada) multipurposeReceived(sensor string, p *message.MultipurposeTelemetry) error {
	n := len(p.AboutNodeAliasList)
	if len(p.TelemetryNameList) != n || len(p.ValueList) != n {
		return fmt.Errorf("%w: %d aliases, %d names, %d values",
			ErrInconsistentBatch, n, len(p.TelemetryNameList), len(p.ValueList))
	}

	tuples := make([]layout.TelemetryTuple, n)
	keep := make([]bool, n)
	for i, about := range p.AboutNodeAliasList {
		if !s.layout.Has(about) {
			return fmt.Errorf("%w: %s in batch from %s", ErrUnknownNode, about, sensor)
		}
		tuples[i] = layout.TelemetryTuple{AboutNode: about, SensorNode: sensor, TelemetryName: p.TelemetryNameList[i]}
		keep[i] = s.data.tracksTuple(tuples[i])
		if !keep[i] {
			if s.strictTuples {
				return fmt.Errorf("%w: %+v", ErrUntrackedTuple, tuples[i])
			}
			s.logger.Debug("dropping untracked telemetry tuple",
				"sensor", sensor,
				"about", about,
				"telemetry_name", p.TelemetryNameList[i],
			)
		}
	}

	for i, tt := range tuples {
		if keep[i] {
			s.data.recordMulti(tt, p.ValueList[i], p.ScadaReadTimeUnixMs)
		}
	}
	return nil
}

// atnDispatch is honoured only while the contract is alive.
func (s *Scada) atnDispatch(p *message.DispatchBoolean) (Diagnostic, error) {
	if !s.evaluateContract() {
		s.reportDispatch(p.FromGNodeAlias, p.AboutNodeAlias, IgnoringAtnDispatch)
		return IgnoringAtnDispatch, nil
	}
	return s.forwardDispatch(p.AboutNodeAlias, p.RelayState, p.FromGNodeAlias)
}

// localDispatch is honoured only while the contract is not alive.
func (s *Scada) localDispatch(p *message.DispatchBooleanLocal) (Diagnostic, error) {
	if s.evaluateContract() {
		s.reportDispatch(p.FromNodeAlias, p.AboutNodeAlias, IgnoringHomeAloneDispatch)
		return IgnoringHomeAloneDispatch, nil
	}
	return s.forwardDispatch(p.AboutNodeAlias, p.RelayState, p.FromNodeAlias)
}

// forwardDispatch sends a local actuation to the relay at about: as an
// envelope when the relay actor runs in process, otherwise on the local
// broker.
func (s *Scada) forwardDispatch(about string, state int, from string) (Diagnostic, error) {
	n, err := s.layout.Node(about)
	if err != nil {
		s.reportDispatch(from, about, UnknownDispatchNode)
		return UnknownDispatchNode, fmt.Errorf("%w: %s: %w", ErrDispatchRejected, about, err)
	}
	if !n.IsBooleanActuator() {
		s.reportDispatch(from, about, DispatchNodeNotBooleanActuator)
		return DispatchNodeNotBooleanActuator, fmt.Errorf("%w: %s is not a boolean actuator", ErrDispatchRejected, about)
	}

	cmd := &message.DispatchBooleanLocal{
		RelayState:     state,
		AboutNodeAlias: about,
		FromNodeAlias:  s.name,
		SendTimeUnixMs: s.now().UnixMilli(),
	}
	if _, ok := s.rt.Communicator(about); ok {
		s.rt.Send(message.New(s.name, about, cmd))
	} else if err := s.rt.Publish(LocalTransport, s.name, cmd); err != nil {
		s.reportDispatch(from, about, DispatchNotDelivered)
		return DispatchNotDelivered, fmt.Errorf("forwarding dispatch to %s: %w", about, err)
	}
	s.reportDispatch(from, about, Success)
	return Success, nil
}

func (s *Scada) reportDispatch(from, about string, d Diagnostic) {
	s.metrics.DispatchHandled(from, about, d.String())
	if d == Success {
		s.logger.Debug("dispatch forwarded", "from", from, "about_node", about)
		return
	}
	s.logger.Info("dispatch not forwarded", "from", from, "about_node", about, "diagnostic", d.String())
}

// evaluateContract re-derives the contract state, reports a change, and
// returns whether it is alive.
func (s *Scada) evaluateContract() bool {
	alive, reason := s.contract.Alive(s.now())
	if alive != s.contractAlive.Load() || reason != s.lastReason {
		s.logger.Info("dispatch contract changed", "alive", alive, "reason", reason)
		s.metrics.ContractChanged(alive, reason)
	}
	s.contractAlive.Store(alive)
	s.lastReason = reason
	return alive
}

// sendStatus runs one status cycle: status to the cloud and the house,
// a snapshot to the cloud, then the buffers are flushed. The buffers are
// flushed even when a publish fails.
func (s *Scada) sendStatus(slot time.Time) error {
	s.evaluateContract()
	status := s.makeStatus(slot)

	var errs []error
	if err := s.publishGridworks(status); err != nil {
		errs = append(errs, err)
	}
	if err := s.rt.Publish(LocalTransport, s.name, status); err != nil {
		errs = append(errs, fmt.Errorf("publishing status locally: %w", err))
	}
	if err := s.publishGridworks(s.makeSnapshot()); err != nil {
		errs = append(errs, err)
	}
	s.data.flush()

	s.metrics.StatusPublished(
		len(status.SimpleTelemetryList),
		len(status.MultipurposeTelemetryList),
		len(status.BooleanactuatorCmdList),
	)
	s.logger.Debug("status sent",
		"status_uid", status.StatusUid,
		"slot_start", status.SlotStartUnixS,
		"simple", len(status.SimpleTelemetryList),
		"multipurpose", len(status.MultipurposeTelemetryList),
		"commands", len(status.BooleanactuatorCmdList),
	)
	return errors.Join(errs...)
}

func (s *Scada) makeStatus(slot time.Time) *message.Status {
	simple, multi, cmds := s.data.status()
	return &message.Status{
		FromGNodeAlias:            s.layout.ScadaGNodeAlias(),
		AboutGNodeAlias:           s.layout.AtnGNodeAlias(),
		StatusUid:                 uuid.NewString(),
		SlotStartUnixS:            slot.Unix(),
		ReportingPeriodS:          int(s.interval / time.Second),
		SimpleTelemetryList:       simple,
		MultipurposeTelemetryList: multi,
		BooleanactuatorCmdList:    cmds,
	}
}

func (s *Scada) makeSnapshot() *message.Snapshot {
	return &message.Snapshot{
		FromGNodeAlias:      s.layout.ScadaGNodeAlias(),
		FromGNodeInstanceId: s.instanceID,
		Snapshot:            s.data.snapshot(s.now().UnixMilli()),
	}
}

// publishGridworks publishes p to the cloud under the Scada's g-node alias.
func (s *Scada) publishGridworks(p message.Payload) error {
	if err := s.rt.Publish(GridworksTransport, s.layout.ScadaGNodeAlias(), p); err != nil {
		return fmt.Errorf("publishing %s to gridworks: %w", p.TypeAlias(), err)
	}
	return nil
}
