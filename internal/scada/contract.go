package scada

import (
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-scada/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-scada/internal/message"
)

// Reasons reported by DispatchContract.Alive.
const (
	ReasonAlive         = "alive"
	ReasonNoContract    = "no contract"
	ReasonLocalControl  = "local control agreed"
	ReasonAtnSilent     = "atn silent"
	ReasonSlowResponse  = "slow response"
	ReasonSlowAverage   = "slow average response"
	ReasonNoAttestation = "no metering attestation"
)

// ContractPolicy holds the liveness thresholds.
type ContractPolicy struct {
	HeartbeatTimeout           time.Duration
	MaxResponse                time.Duration
	MaxAverageResponse         time.Duration
	ResponseWindow             int
	RequireMeteringAttestation bool
	AttestationMaxAge          time.Duration
}

// PolicyFromConfig converts the configured thresholds.
func PolicyFromConfig(cfg config.DispatchContractConfig) ContractPolicy {
	return ContractPolicy{
		HeartbeatTimeout:           time.Duration(cfg.HeartbeatTimeout) * time.Second,
		MaxResponse:                time.Duration(cfg.MaxResponse) * time.Second,
		MaxAverageResponse:         time.Duration(cfg.MaxAverageResponse) * time.Second,
		ResponseWindow:             cfg.ResponseWindow,
		RequireMeteringAttestation: cfg.RequireMeteringAttestation,
		AttestationMaxAge:          time.Duration(cfg.AttestationMaxAge) * time.Second,
	}
}

// DispatchContract tracks whether the fast dispatch contract with the Atn
// is alive. It is alive only when all of these hold:
//
//   - the Atn established a contract and has not terminated it
//   - local control has not been agreed
//   - the Atn was heard from within HeartbeatTimeout
//   - the latest dispatch latency is within MaxResponse and the mean over
//     the last ResponseWindow dispatches is within MaxAverageResponse
//   - with RequireMeteringAttestation, a power reading arrived within
//     AttestationMaxAge
//
// A new contract is not alive. Not safe for concurrent use; the core only
// touches it from the dispatch goroutine.
type DispatchContract struct {
	policy ContractPolicy

	established  bool
	localControl bool
	lastAtn      time.Time
	lastPower    time.Time

	// latencies is a ring of the last ResponseWindow dispatch latencies.
	latencies []time.Duration
	next      int
	filled    bool
}

// NewDispatchContract returns a contract that is not alive.
func NewDispatchContract(policy ContractPolicy) *DispatchContract {
	if policy.ResponseWindow < 1 {
		policy.ResponseWindow = 1
	}
	return &DispatchContract{
		policy:    policy,
		latencies: make([]time.Duration, policy.ResponseWindow),
	}
}

// Handoff applies a contract handoff from the Atn.
func (c *DispatchContract) Handoff(action message.ContractAction) error {
	switch action {
	case message.ContractEstablish:
		c.established = true
	case message.ContractTerminate:
		c.established = false
		c.localControl = false
	case message.ContractLocalControl:
		c.localControl = true
	case message.ContractResumeCloud:
		c.localControl = false
	default:
		return fmt.Errorf("%w: action %q", ErrInvalidHandoff, action)
	}
	return nil
}

// AtnHeard records that a message from the Atn arrived at now.
func (c *DispatchContract) AtnHeard(now time.Time) {
	c.lastAtn = now
}

// DispatchLatency records how long a dispatch took from the Atn's send
// time to now. A send time in the future counts as zero latency.
func (c *DispatchContract) DispatchLatency(sent, now time.Time) {
	d := now.Sub(sent)
	if d < 0 {
		d = 0
	}
	c.latencies[c.next] = d
	c.next = (c.next + 1) % len(c.latencies)
	if c.next == 0 {
		c.filled = true
	}
}

// PowerReported records a power meter reading for metering attestation.
func (c *DispatchContract) PowerReported(now time.Time) {
	c.lastPower = now
}

// Alive reports whether the contract is alive at now, and why not.
func (c *DispatchContract) Alive(now time.Time) (bool, string) {
	switch {
	case !c.established:
		return false, ReasonNoContract
	case c.localControl:
		return false, ReasonLocalControl
	case c.lastAtn.IsZero() || now.Sub(c.lastAtn) > c.policy.HeartbeatTimeout:
		return false, ReasonAtnSilent
	}

	if last, ok := c.lastLatency(); ok && last > c.policy.MaxResponse {
		return false, ReasonSlowResponse
	}
	if avg, ok := c.AverageLatency(); ok && avg > c.policy.MaxAverageResponse {
		return false, ReasonSlowAverage
	}

	if c.policy.RequireMeteringAttestation {
		if c.lastPower.IsZero() || now.Sub(c.lastPower) > c.policy.AttestationMaxAge {
			return false, ReasonNoAttestation
		}
	}
	return true, ReasonAlive
}

// AverageLatency returns the mean of the recorded latencies.
func (c *DispatchContract) AverageLatency() (time.Duration, bool) {
	n := c.count()
	if n == 0 {
		return 0, false
	}
	var sum time.Duration
	for i := 0; i < n; i++ {
		sum += c.latencies[i]
	}
	return sum / time.Duration(n), true
}

func (c *DispatchContract) lastLatency() (time.Duration, bool) {
	if c.count() == 0 {
		return 0, false
	}
	i := (c.next - 1 + len(c.latencies)) % len(c.latencies)
	return c.latencies[i], true
}

func (c *DispatchContract) count() int {
	if c.filled {
		return len(c.latencies)
	}
	return c.next
}
