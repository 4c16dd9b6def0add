package scada

import (
	"fmt"

	"github.com/nerrad567/gray-logic-scada/internal/proactor"
)

var (
	// ErrWrongSender is reported when a message comes from a node that may
	// not send it.
	ErrWrongSender = fmt.Errorf("%w: scada: wrong sender", proactor.ErrProtocol)

	// ErrUnexpectedTransport is reported for messages on a transport the
	// core does not listen to.
	ErrUnexpectedTransport = fmt.Errorf("%w: scada: unexpected transport", proactor.ErrProtocol)

	// ErrInconsistentBatch is reported for a multipurpose batch whose lists
	// differ in length.
	ErrInconsistentBatch = fmt.Errorf("%w: scada: inconsistent telemetry batch", proactor.ErrProtocol)

	// ErrUnknownNode is reported when a batch names a node not in the layout.
	ErrUnknownNode = fmt.Errorf("%w: scada: unknown node", proactor.ErrProtocol)

	// ErrUntrackedTuple is reported for a multipurpose reading the core
	// does not track, when strict tuple checking is on.
	ErrUntrackedTuple = fmt.Errorf("%w: scada: telemetry tuple not tracked", proactor.ErrLogic)

	// ErrInvalidHandoff is reported for a contract handoff with an unknown action.
	ErrInvalidHandoff = fmt.Errorf("%w: scada: invalid contract handoff", proactor.ErrProtocol)

	// ErrDispatchRejected is reported when a dispatch names a node that
	// cannot be switched.
	ErrDispatchRejected = fmt.Errorf("%w: scada: dispatch rejected", proactor.ErrLogic)
)
