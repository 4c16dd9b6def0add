package actors

import (
	"fmt"

	"github.com/nerrad567/gray-logic-scada/internal/drivers"
	"github.com/nerrad567/gray-logic-scada/internal/layout"
	"github.com/nerrad567/gray-logic-scada/internal/proactor"
)

// Build creates one actor per layout node whose actor class runs in
// process: boolean actuators, simple sensors and the power meter. Atn,
// Scada and HomeAlone nodes are served elsewhere.
//
// A node whose make/model has no driver fails the whole build with an
// error wrapping proactor.ErrConfig.
func Build(l *layout.Layout, services proactor.Services, reg *drivers.Registry, opts Options) ([]proactor.Runnable, error) {
	if err := reg.Check(l); err != nil {
		return nil, fmt.Errorf("%w: %w", proactor.ErrConfig, err)
	}
	opts = opts.withDefaults()

	var out []proactor.Runnable
	for _, n := range l.Nodes() {
		switch n.ActorClass {
		case layout.ActorBooleanActuator:
			d, err := reg.Relay(*n.Component)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", proactor.ErrConfig, err)
			}
			out = append(out, NewBooleanActuator(n, services, d, opts))
		case layout.ActorSimpleSensor:
			d, err := reg.Telemetry(*n.Component)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", proactor.ErrConfig, err)
			}
			out = append(out, NewSimpleSensor(n, services, d, opts))
		case layout.ActorPowerMeter:
			d, err := reg.Power(*n.Component)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", proactor.ErrConfig, err)
			}
			out = append(out, NewPowerMeter(n, services, d, opts))
		}
	}
	return out, nil
}
