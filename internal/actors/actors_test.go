package actors

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-scada/internal/drivers"
	"github.com/nerrad567/gray-logic-scada/internal/layout"
	"github.com/nerrad567/gray-logic-scada/internal/message"
	"github.com/nerrad567/gray-logic-scada/internal/proactor"
)

const scadaAlias = "a.s"

// fakeServices records what actors send back to the runtime.
type fakeServices struct {
	mu   sync.Mutex
	sent []message.Envelope
}

func (f *fakeServices) Name() string { return scadaAlias }

func (f *fakeServices) Send(env message.Envelope) { f.SendThreadsafe(env) }

func (f *fakeServices) Publish(string, string, message.Payload) error { return nil }

func (f *fakeServices) SendThreadsafe(env message.Envelope) {
	f.mu.Lock()
	f.sent = append(f.sent, env)
	f.mu.Unlock()
}

func (f *fakeServices) Sent() []message.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]message.Envelope(nil), f.sent...)
}

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func testOptions() Options {
	return Options{Now: func() time.Time { return fixedNow }}
}

func testLayout(t *testing.T) *layout.Layout {
	t.Helper()
	l, err := layout.Load("../../configs/layout.yaml")
	if err != nil {
		t.Fatalf("layout.Load() error = %v", err)
	}
	return l
}

func mustNode(t *testing.T, l *layout.Layout, alias string) layout.Node {
	t.Helper()
	n, err := l.Node(alias)
	if err != nil {
		t.Fatalf("Node(%s) error = %v", alias, err)
	}
	return n
}

func TestBuild_CreatesInProcessActors(t *testing.T) {
	svc := &fakeServices{}
	comms, err := Build(testLayout(t), svc, drivers.NewSimRegistry(), testOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	got := map[string]string{}
	for _, c := range comms {
		switch c.(type) {
		case *BooleanActuator:
			got[c.Name()] = "relay"
		case *SimpleSensor:
			got[c.Name()] = "sensor"
		case *PowerMeter:
			got[c.Name()] = "meter"
		}
	}
	want := map[string]string{
		"a.elt1.relay": "relay",
		"a.tank.temp0": "sensor",
		"a.m":          "meter",
	}
	if len(got) != len(want) {
		t.Fatalf("Build() actors = %v, want %v", got, want)
	}
	for alias, kind := range want {
		if got[alias] != kind {
			t.Errorf("actor %s = %q, want %q", alias, got[alias], kind)
		}
	}
}

func TestBuild_MissingDriverIsConfigError(t *testing.T) {
	_, err := Build(testLayout(t), &fakeServices{}, drivers.NewRegistry(), testOptions())
	if !errors.Is(err, proactor.ErrConfig) || !errors.Is(err, drivers.ErrNoDriver) {
		t.Errorf("Build() error = %v, want ErrConfig wrapping ErrNoDriver", err)
	}
}

func TestBooleanActuator_Actuate(t *testing.T) {
	l := testLayout(t)
	svc := &fakeServices{}
	relay := &drivers.SimRelay{}
	a := NewBooleanActuator(mustNode(t, l, "a.elt1.relay"), svc, relay, testOptions())

	if err := a.Actuate(1); err != nil {
		t.Fatalf("Actuate(1) error = %v", err)
	}
	if s, _ := relay.RelayState(); s != 1 {
		t.Errorf("relay state = %d, want 1", s)
	}

	sent := svc.Sent()
	if len(sent) != 2 {
		t.Fatalf("sent %d envelopes, want 2", len(sent))
	}
	for _, env := range sent {
		if env.Header.Src != "a.elt1.relay" || env.Header.Dst != scadaAlias {
			t.Errorf("header = %+v", env.Header)
		}
	}
	cmd, ok := sent[0].Payload.(*message.BooleanActuatorCmd)
	if !ok {
		t.Fatalf("first payload = %T, want *message.BooleanActuatorCmd", sent[0].Payload)
	}
	if cmd.RelayState != 1 || cmd.ShNodeAlias != "a.elt1.relay" || cmd.CommandTimeUnixMs != fixedNow.UnixMilli() {
		t.Errorf("command record = %+v", cmd)
	}
	tel, ok := sent[1].Payload.(*message.Telemetry)
	if !ok {
		t.Fatalf("second payload = %T, want *message.Telemetry", sent[1].Payload)
	}
	if tel.Name != message.TelemetryRelayState || tel.Value != 1 {
		t.Errorf("telemetry = %+v", tel)
	}

	if err := a.Actuate(3); !errors.Is(err, drivers.ErrInvalidRelayState) {
		t.Errorf("Actuate(3) error = %v, want ErrInvalidRelayState", err)
	}
	if n := len(svc.Sent()); n != 2 {
		t.Errorf("failed actuation sent envelopes: total %d", n)
	}
}

func TestBooleanActuator_ProcessMessage(t *testing.T) {
	l := testLayout(t)
	svc := &fakeServices{}
	a := NewBooleanActuator(mustNode(t, l, "a.elt1.relay"), svc, &drivers.SimRelay{}, testOptions())
	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	err := a.ProcessMessage(message.New(scadaAlias, "a.elt1.relay", &message.DispatchBooleanLocal{
		RelayState:     1,
		AboutNodeAlias: "a.elt1.relay",
		FromNodeAlias:  scadaAlias,
	}))
	if err != nil {
		t.Fatalf("ProcessMessage() error = %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for len(svc.Sent()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := len(svc.Sent()); n != 2 {
		t.Fatalf("sent %d envelopes, want 2", n)
	}

	tests := []struct {
		name string
		p    message.Payload
		want error
	}{
		{"wrong payload", &message.Power{}, proactor.ErrUnhandledPayload},
		{"wrong target", &message.DispatchBooleanLocal{AboutNodeAlias: "a.elt2.relay"}, ErrWrongTarget},
	}
	for _, tt := range tests {
		if err := a.ProcessMessage(message.New(scadaAlias, "a.elt1.relay", tt.p)); !errors.Is(err, tt.want) {
			t.Errorf("%s: ProcessMessage() error = %v, want %v", tt.name, err, tt.want)
		}
	}

	a.Stop()
	a.Stop()
	if err := a.Join(); err != nil {
		t.Errorf("Join() error = %v", err)
	}
	err = a.ProcessMessage(message.New(scadaAlias, "a.elt1.relay", &message.DispatchBooleanLocal{}))
	if !errors.Is(err, ErrNotRunning) {
		t.Errorf("ProcessMessage() after Stop error = %v, want ErrNotRunning", err)
	}
}

func TestBooleanActuator_InboxFull(t *testing.T) {
	l := testLayout(t)
	// Not started, so nothing drains the inbox.
	a := NewBooleanActuator(mustNode(t, l, "a.elt1.relay"), &fakeServices{}, &drivers.SimRelay{}, testOptions())
	env := message.New(scadaAlias, "a.elt1.relay", &message.DispatchBooleanLocal{RelayState: 1})

	for i := 0; i < defaultInboxSize; i++ {
		if err := a.ProcessMessage(env); err != nil {
			t.Fatalf("ProcessMessage() #%d error = %v", i, err)
		}
	}
	if err := a.ProcessMessage(env); !errors.Is(err, ErrInboxFull) {
		t.Errorf("ProcessMessage() error = %v, want ErrInboxFull", err)
	}
	if proactor.KindOf(ErrInboxFull) != proactor.KindRuntime {
		t.Errorf("KindOf(ErrInboxFull) = %q", proactor.KindOf(ErrInboxFull))
	}
}

func TestSimpleSensor_Sample(t *testing.T) {
	l := testLayout(t)
	svc := &fakeServices{}
	s := NewSimpleSensor(mustNode(t, l, "a.tank.temp0"), svc, drivers.NewSimTemperature(63, 3), testOptions())

	if err := s.Sample(); err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	sent := svc.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d envelopes, want 1", len(sent))
	}
	tel := sent[0].Payload.(*message.Telemetry)
	if tel.Name != message.TelemetryWaterTempFTimes1000 || tel.Exponent != 3 {
		t.Errorf("telemetry = %+v", tel)
	}
	if tel.Value < 63000 || tel.ScadaReadTimeUnixMs != fixedNow.UnixMilli() {
		t.Errorf("telemetry = %+v", tel)
	}
}

func TestSimpleSensor_SamplesWhileRunning(t *testing.T) {
	l := testLayout(t)
	svc := &fakeServices{}
	opts := testOptions()
	opts.SamplePeriod = 10 * time.Millisecond
	s := NewSimpleSensor(mustNode(t, l, "a.tank.temp0"), svc, drivers.NewSimTemperature(63, 3), opts)

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for len(svc.Sent()) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()
	if err := s.Join(); err != nil {
		t.Errorf("Join() error = %v", err)
	}
	if n := len(svc.Sent()); n < 3 {
		t.Errorf("sent %d readings, want at least 3", n)
	}
	if err := s.ProcessMessage(message.New(scadaAlias, "a.tank.temp0", &message.Power{})); !errors.Is(err, proactor.ErrUnhandledPayload) {
		t.Errorf("ProcessMessage() error = %v, want ErrUnhandledPayload", err)
	}
}

func TestPowerMeter_Sample(t *testing.T) {
	l := testLayout(t)
	svc := &fakeServices{}
	pm := drivers.NewSimPowerMeter()
	m := NewPowerMeter(mustNode(t, l, "a.m"), svc, pm, testOptions())

	powerReports := func() []int {
		var out []int
		for _, env := range svc.Sent() {
			if p, ok := env.Payload.(*message.Power); ok {
				out = append(out, p.Power)
			}
		}
		return out
	}

	steps := []struct {
		load int
		want []int
	}{
		{4000, []int{4000}},            // first sample always reports
		{4100, []int{4000}},            // 2.5% change
		{4300, []int{4000, 4300}},      // 7.5% change from last report
		{4300, []int{4000, 4300}},      // unchanged
		{0, []int{4000, 4300, 0}},      // dropped to zero
		{0, []int{4000, 4300, 0}},      // still zero
		{10, []int{4000, 4300, 0, 10}}, // any change from zero
	}
	for i, step := range steps {
		pm.SetLoad("a.elt1", step.load)
		if err := m.Sample(); err != nil {
			t.Fatalf("step %d: Sample() error = %v", i, err)
		}
		got := powerReports()
		if len(got) != len(step.want) {
			t.Fatalf("step %d: power reports = %v, want %v", i, got, step.want)
		}
		for j := range got {
			if got[j] != step.want[j] {
				t.Fatalf("step %d: power reports = %v, want %v", i, got, step.want)
			}
		}
	}
}

func TestPowerMeter_SendsTupleBatch(t *testing.T) {
	l := testLayout(t)
	svc := &fakeServices{}
	pm := drivers.NewSimPowerMeter()
	pm.SetLoad("a.elt1", 4800)
	m := NewPowerMeter(mustNode(t, l, "a.m"), svc, pm, testOptions())

	if err := m.Sample(); err != nil {
		t.Fatalf("Sample() error = %v", err)
	}

	var batch *message.MultipurposeTelemetry
	for _, env := range svc.Sent() {
		if b, ok := env.Payload.(*message.MultipurposeTelemetry); ok {
			batch = b
		}
	}
	if batch == nil {
		t.Fatal("no multipurpose telemetry sent")
	}
	if len(batch.AboutNodeAliasList) != 2 || len(batch.ValueList) != 2 || len(batch.TelemetryNameList) != 2 {
		t.Fatalf("batch = %+v", batch)
	}
	for i, name := range batch.TelemetryNameList {
		if batch.AboutNodeAliasList[i] != "a.elt1" {
			t.Errorf("about[%d] = %q", i, batch.AboutNodeAliasList[i])
		}
		want := 4800
		if name == message.TelemetryCurrentRmsMicroAmps {
			want = 20_000_000
		}
		if batch.ValueList[i] != want {
			t.Errorf("%s = %d, want %d", name, batch.ValueList[i], want)
		}
	}
}
