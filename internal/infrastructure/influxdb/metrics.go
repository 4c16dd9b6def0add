package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	measurementEnvelopes = "scada_envelopes"
	measurementContract  = "scada_dispatch_contract"
	measurementDispatch  = "scada_dispatch"
	measurementStatus    = "scada_status"
	measurementPower     = "scada_power"
)

// Envelope outcomes.
const (
	outcomeProcessed = "processed"
	outcomeRejected  = "rejected"
)

// EnvelopeProcessed records one envelope handled by the runtime.
func (c *Client) EnvelopeProcessed(messageType string) {
	c.writePoint(envelopePoint(c.source, messageType, outcomeProcessed, "", c.now()))
}

// EnvelopeRejected records one dropped envelope with the error kind and reason.
func (c *Client) EnvelopeRejected(kind, reason string) {
	p := envelopePoint(c.source, "", outcomeRejected, kind, c.now())
	p.AddField("reason", reason)
	c.writePoint(p)
}

// ContractChanged records a dispatch contract transition.
func (c *Client) ContractChanged(alive bool, reason string) {
	c.writePoint(write.NewPoint(
		measurementContract,
		map[string]string{"source": c.source},
		map[string]interface{}{
			"alive":  alive,
			"reason": reason,
		},
		c.now(),
	))
}

// DispatchHandled records the outcome of a relay dispatch.
func (c *Client) DispatchHandled(from, aboutNode, diagnostic string) {
	c.writePoint(write.NewPoint(
		measurementDispatch,
		map[string]string{
			"source":     c.source,
			"from":       from,
			"about_node": aboutNode,
			"diagnostic": diagnostic,
		},
		map[string]interface{}{"count": 1},
		c.now(),
	))
}

// StatusPublished records the size of one status report.
func (c *Client) StatusPublished(simple, multipurpose, commands int) {
	c.writePoint(write.NewPoint(
		measurementStatus,
		map[string]string{"source": c.source},
		map[string]interface{}{
			"simple_telemetry":       simple,
			"multipurpose_telemetry": multipurpose,
			"boolean_actuator_cmds":  commands,
		},
		c.now(),
	))
}

// PowerReported records the total power reading from the meter.
func (c *Client) PowerReported(watts int) {
	c.writePoint(write.NewPoint(
		measurementPower,
		map[string]string{"source": c.source},
		map[string]interface{}{"power_watts": watts},
		c.now(),
	))
}

func envelopePoint(source, messageType, outcome, kind string, ts time.Time) *write.Point {
	tags := map[string]string{
		"source":  source,
		"outcome": outcome,
	}
	if messageType != "" {
		tags["message_type"] = messageType
	}
	if kind != "" {
		tags["kind"] = kind
	}
	return write.NewPoint(measurementEnvelopes, tags, map[string]interface{}{"count": 1}, ts)
}
