package pad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/vovakirdan/melee-gym/internal/melee"
)

// recorder is a controller that logs every call.
type recorder struct {
	calls   []string
	failOn  string
	failErr error
}

func (r *recorder) record(call string) error {
	r.calls = append(r.calls, call)
	if call == r.failOn {
		return r.failErr
	}
	return nil
}

func (r *recorder) Port() melee.Port                 { return melee.Port1 }
func (r *recorder) Connect(ctx context.Context) error { return nil }
func (r *recorder) Disconnect() error                 { return nil }

func (r *recorder) PressButton(b melee.Button) error {
	return r.record("press " + b.String())
}

func (r *recorder) ReleaseButton(b melee.Button) error {
	return r.record("release " + b.String())
}

func (r *recorder) TiltAnalog(b melee.Button, x, y float64) error {
	return r.record(fmt.Sprintf("tilt %s %.2f %.2f", b, x, y))
}

func (r *recorder) PressShoulder(b melee.Button, v float64) error {
	return r.record(fmt.Sprintf("shoulder %s %.2f", b, v))
}

func TestApply(t *testing.T) {
	s := Neutral()
	s.Press(melee.ButtonA)
	s.MainStick = Stick{1, 0.5}
	s.RShoulder = 0.25

	r := &recorder{}
	legal := []melee.Button{melee.ButtonA, melee.ButtonB, melee.ButtonZ}
	if err := Apply(r, s, legal); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := []string{
		"press A",
		"release B",
		"release Z",
		"tilt MAIN 1.00 0.50",
		"tilt C 0.50 0.50",
		"shoulder L 0.00",
		"shoulder R 0.25",
	}
	if !reflect.DeepEqual(r.calls, want) {
		t.Errorf("Unexpected calls:\n got %v\nwant %v", r.calls, want)
	}
}

func TestApplyOnlyLegalButtons(t *testing.T) {
	s := Neutral()
	s.Press(melee.ButtonStart)

	r := &recorder{}
	if err := Apply(r, s, []melee.Button{melee.ButtonA}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	for _, c := range r.calls {
		if c == "press START" {
			t.Error("Non-legal button must not be sent")
		}
	}
}

func TestApplyPropagatesErrors(t *testing.T) {
	boom := errors.New("pipe closed")
	r := &recorder{failOn: "tilt C 0.50 0.50", failErr: boom}

	err := Apply(r, Neutral(), []melee.Button{melee.ButtonA})
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	if err := Neutral().Validate(); err != nil {
		t.Errorf("Neutral should be valid: %v", err)
	}

	bad := Neutral()
	bad.CStick.Y = 1.5
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for c-stick out of range")
	}

	bad = Neutral()
	bad.LShoulder = -0.1
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for shoulder out of range")
	}

	tests := []struct {
		name string
		mod  func(*State)
	}{
		{"main stick x NaN", func(s *State) { s.MainStick.X = math.NaN() }},
		{"c-stick y NaN", func(s *State) { s.CStick.Y = math.NaN() }},
		{"r shoulder NaN", func(s *State) { s.RShoulder = math.NaN() }},
		{"l shoulder +Inf", func(s *State) { s.LShoulder = math.Inf(1) }},
		{"main stick y -Inf", func(s *State) { s.MainStick.Y = math.Inf(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Neutral()
			tt.mod(&s)
			if err := s.Validate(); err == nil {
				t.Errorf("Expected error for %s", tt.name)
			}
		})
	}
}

func TestStateJSON(t *testing.T) {
	doc := `{"button": {"A": true, "B": false}, "main_stick": [0.0, 1.0], "c_stick": [0.5, 0.5], "l_shoulder": 0, "r_shoulder": 1}`

	var s State
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !s.Pressed(melee.ButtonA) || s.Pressed(melee.ButtonB) {
		t.Errorf("Unexpected buttons: %v", s.Buttons)
	}
	if s.MainStick != (Stick{0, 1}) {
		t.Errorf("Unexpected main stick: %+v", s.MainStick)
	}
	if s.RShoulder != 1 {
		t.Errorf("Unexpected r shoulder: %g", s.RShoulder)
	}

	if err := json.Unmarshal([]byte(`{"main_stick": 3}`), &s); err == nil {
		t.Error("Expected error for scalar stick")
	}
}

func TestClone(t *testing.T) {
	s := Neutral()
	s.Press(melee.ButtonX)

	c := s.Clone()
	c.Press(melee.ButtonY)

	if s.Pressed(melee.ButtonY) {
		t.Error("Clone must not share the button map")
	}
	if !c.Pressed(melee.ButtonX) {
		t.Error("Clone lost a pressed button")
	}
}
