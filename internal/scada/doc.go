// Package scada is the SCADA core: the runtime specialisation that owns
// the device data buffers, arbitrates relay dispatch between the cloud
// supervisor (Atn) and the local fallback actor (HomeAlone), and sends the
// periodic status report.
//
// Two transports are registered:
//
//   - gridworks: the cloud broker. Only the Atn may send on it. Receives
//     DispatchBoolean, CliAtnCmd and ContractHandoff; carries Power, Status
//     and Snapshot up.
//   - local: the house broker. Any layout node may send on it. Receives
//     telemetry from out-of-process actors and HomeAlone dispatches;
//     carries Status and relay dispatches for actors that are not in
//     process.
//
// Every telemetry and command record is checked against the layout: power
// readings must come from the power meter, relay command records from the
// relay itself, and so on. A mismatch is a protocol error for that one
// envelope.
//
// The dispatch contract decides who may switch relays. While it is alive
// Atn dispatches are honoured and HomeAlone dispatches are ignored; while
// it is not, the reverse. See DispatchContract for the liveness policy.
//
// All state is owned by the dispatch goroutine. The exported methods that
// may be called from elsewhere (TurnOn, TurnOff, RequestStatus,
// ContractAlive) only read the read-only layout or hand an envelope to the
// queue.
package scada
