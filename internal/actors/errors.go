package actors

import (
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-scada/internal/proactor"
)

var (
	// ErrInboxFull is returned when an actor cannot accept another envelope.
	ErrInboxFull = fmt.Errorf("%w: actors: inbox full", proactor.ErrRuntime)

	// ErrWrongTarget is returned for a dispatch about a different node.
	ErrWrongTarget = fmt.Errorf("%w: actors: dispatch is about another node", proactor.ErrLogic)

	// ErrNotRunning is returned when an actor receives work before Start or after Stop.
	ErrNotRunning = errors.New("actors: not running")
)
