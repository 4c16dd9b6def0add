package scada

import (
	"sort"

	"github.com/nerrad567/gray-logic-scada/internal/layout"
	"github.com/nerrad567/gray-logic-scada/internal/message"
)

// readings is a value buffer kept until the next status report.
type readings struct {
	values []int
	times  []int64
}

func (r *readings) add(v int, tMs int64) {
	r.values = append(r.values, v)
	r.times = append(r.times, tMs)
}

func (r *readings) empty() bool { return len(r.values) == 0 }

func (r *readings) reset() {
	r.values = nil
	r.times = nil
}

// data holds the recent readings and command records of every tracked
// device. Only the dispatch goroutine touches it.
type data struct {
	layout *layout.Layout

	simple       map[string]*readings
	latestSimple map[string]int

	multi       map[layout.TelemetryTuple]*readings
	latestMulti map[layout.TelemetryTuple]int
	tuples      []layout.TelemetryTuple

	commands map[string]*readings

	latestTotalPowerW int
	hasPower          bool
}

func newData(l *layout.Layout) *data {
	d := &data{
		layout:       l,
		simple:       make(map[string]*readings),
		latestSimple: make(map[string]int),
		multi:        make(map[layout.TelemetryTuple]*readings),
		latestMulti:  make(map[layout.TelemetryTuple]int),
		tuples:       l.TelemetryTuples(),
		commands:     make(map[string]*readings),
	}
	for _, n := range l.SimpleSensors() {
		d.simple[n.Alias] = &readings{}
	}
	for _, tt := range d.tuples {
		d.multi[tt] = &readings{}
	}
	for _, n := range l.BooleanActuators() {
		d.commands[n.Alias] = &readings{}
	}
	return d
}

func (d *data) tracksSimple(alias string) bool {
	_, ok := d.simple[alias]
	return ok
}

func (d *data) tracksTuple(tt layout.TelemetryTuple) bool {
	_, ok := d.multi[tt]
	return ok
}

func (d *data) tracksCommands(alias string) bool {
	_, ok := d.commands[alias]
	return ok
}

func (d *data) recordSimple(alias string, value int, tMs int64) {
	d.simple[alias].add(value, tMs)
	d.latestSimple[alias] = value
}

func (d *data) recordMulti(tt layout.TelemetryTuple, value int, tMs int64) {
	d.multi[tt].add(value, tMs)
	d.latestMulti[tt] = value
}

func (d *data) recordCommand(alias string, state int, tMs int64) {
	d.commands[alias].add(state, tMs)
}

func (d *data) recordPower(watts int) {
	d.latestTotalPowerW = watts
	d.hasPower = true
}

// status assembles the report body from the buffers. Devices with no
// readings since the last flush are left out. The lists are never nil, so
// a quiet period encodes as empty lists.
func (d *data) status() (simple []message.SimpleTelemetryStatus, multi []message.MultipurposeTelemetryStatus, cmds []message.BooleanActuatorCmdStatus) {
	simple = []message.SimpleTelemetryStatus{}
	multi = []message.MultipurposeTelemetryStatus{}
	cmds = []message.BooleanActuatorCmdStatus{}
	for _, n := range d.layout.SimpleSensors() {
		r := d.simple[n.Alias]
		if r.empty() {
			continue
		}
		simple = append(simple, message.SimpleTelemetryStatus{
			ShNodeAlias:        n.Alias,
			TelemetryName:      n.TelemetryName(),
			ValueList:          append([]int(nil), r.values...),
			ReadTimeUnixMsList: append([]int64(nil), r.times...),
		})
	}
	for _, tt := range d.tuples {
		r := d.multi[tt]
		if r.empty() {
			continue
		}
		multi = append(multi, message.MultipurposeTelemetryStatus{
			AboutNodeAlias:     tt.AboutNode,
			SensorNodeAlias:    tt.SensorNode,
			TelemetryName:      tt.TelemetryName,
			ValueList:          append([]int(nil), r.values...),
			ReadTimeUnixMsList: append([]int64(nil), r.times...),
		})
	}
	for _, n := range d.layout.BooleanActuators() {
		r := d.commands[n.Alias]
		if r.empty() {
			continue
		}
		cmds = append(cmds, message.BooleanActuatorCmdStatus{
			ShNodeAlias:           n.Alias,
			RelayStateCommandList: append([]int(nil), r.values...),
			CommandTimeUnixMsList: append([]int64(nil), r.times...),
		})
	}
	return simple, multi, cmds
}

// snapshot returns the latest value of everything read so far. Simple
// readings come first, sorted by alias, then multipurpose readings in
// tuple order.
func (d *data) snapshot(reportTimeMs int64) message.TelemetrySnapshot {
	snap := message.TelemetrySnapshot{
		AboutNodeAliasList: []string{},
		ValueList:          []int{},
		TelemetryNameList:  []message.TelemetryName{},
		ReportTimeUnixMs:   reportTimeMs,
	}

	aliases := make([]string, 0, len(d.latestSimple))
	for a := range d.latestSimple {
		aliases = append(aliases, a)
	}
	sort.Strings(aliases)
	for _, a := range aliases {
		n, err := d.layout.Node(a)
		if err != nil {
			continue
		}
		snap.AboutNodeAliasList = append(snap.AboutNodeAliasList, a)
		snap.ValueList = append(snap.ValueList, d.latestSimple[a])
		snap.TelemetryNameList = append(snap.TelemetryNameList, n.TelemetryName())
	}

	for _, tt := range d.tuples {
		v, ok := d.latestMulti[tt]
		if !ok {
			continue
		}
		snap.AboutNodeAliasList = append(snap.AboutNodeAliasList, tt.AboutNode)
		snap.ValueList = append(snap.ValueList, v)
		snap.TelemetryNameList = append(snap.TelemetryNameList, tt.TelemetryName)
	}
	return snap
}

// flush clears the buffers. Latest values survive for snapshots.
func (d *data) flush() {
	for _, r := range d.simple {
		r.reset()
	}
	for _, r := range d.multi {
		r.reset()
	}
	for _, r := range d.commands {
		r.reset()
	}
}

// pending returns how many readings and command records are buffered.
func (d *data) pending() int {
	n := 0
	for _, r := range d.simple {
		n += len(r.values)
	}
	for _, r := range d.multi {
		n += len(r.values)
	}
	for _, r := range d.commands {
		n += len(r.values)
	}
	return n
}
