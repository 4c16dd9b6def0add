package scada

import (
	"testing"

	"github.com/nerrad567/gray-logic-scada/internal/layout"
	"github.com/nerrad567/gray-logic-scada/internal/message"
)

func TestData_SnapshotKeepsLatestAfterFlush(t *testing.T) {
	d := newData(testLayout(t))
	tuple := layout.TelemetryTuple{AboutNode: "a.elt1", SensorNode: meterAlias, TelemetryName: message.TelemetryPowerW}
	if !d.tracksTuple(tuple) {
		t.Fatalf("tuple %+v not tracked", tuple)
	}

	d.recordSimple(tempAlias, 61000, 1)
	d.recordSimple(tempAlias, 62000, 2)
	d.recordSimple(relayAlias, 1, 3)
	d.recordMulti(tuple, 4350, 4)
	d.recordCommand(relayAlias, 1, 3)
	if got := d.pending(); got != 5 {
		t.Fatalf("pending() = %d, want 5", got)
	}

	d.flush()
	if got := d.pending(); got != 0 {
		t.Fatalf("pending() after flush = %d, want 0", got)
	}
	simple, multi, cmds := d.status()
	if len(simple)+len(multi)+len(cmds) != 0 {
		t.Errorf("status() after flush = %v %v %v", simple, multi, cmds)
	}

	snap := d.snapshot(99)
	wantAliases := []string{relayAlias, tempAlias, "a.elt1"}
	wantValues := []int{1, 62000, 4350}
	if len(snap.AboutNodeAliasList) != len(wantAliases) {
		t.Fatalf("snapshot aliases = %v, want %v", snap.AboutNodeAliasList, wantAliases)
	}
	for i := range wantAliases {
		if snap.AboutNodeAliasList[i] != wantAliases[i] || snap.ValueList[i] != wantValues[i] {
			t.Errorf("snapshot[%d] = %s=%d, want %s=%d",
				i, snap.AboutNodeAliasList[i], snap.ValueList[i], wantAliases[i], wantValues[i])
		}
	}
	if snap.TelemetryNameList[0] != message.TelemetryRelayState || snap.ReportTimeUnixMs != 99 {
		t.Errorf("snapshot = %+v", snap)
	}
}
