package sprig

import (
	"encoding/json"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action string     `json:"action"`
	Label  string     `json:"label,omitempty"`
	X      int        `json:"x,omitempty"`
	Y      int        `json:"y,omitempty"`
	FromX  int        `json:"fromX,omitempty"`
	FromY  int        `json:"fromY,omitempty"`
	ToX    int        `json:"toX,omitempty"`
	ToY    int        `json:"toY,omitempty"`
	DX     float64    `json:"dx,omitempty"`
	DY     float64    `json:"dy,omitempty"`
	Frames int        `json:"frames,omitempty"`
	Key    ebiten.Key `json:"key,omitempty"`
	Shift  bool       `json:"shift,omitempty"`
	Text   string     `json:"text,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

var knownActions = map[string]bool{
	"click": true, "drag": true, "wait": true, "key": true,
	"type": true, "wheel": true, "screenshot": true,
}

// TestRunner sequences injected input and screenshots across steps for
// scripted interaction tests. Attach to a Gui via SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON test script such as
//
//	{"steps": [
//	  {"action": "click", "x": 40, "y": 20},
//	  {"action": "key", "key": "Tab", "shift": true},
//	  {"action": "type", "text": "hello"},
//	  {"action": "wait", "frames": 3},
//	  {"action": "screenshot", "label": "after"}
//	]}
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if !knownActions[st.Action] {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner. It is advanced by every Step call,
// before the queued input is drained.
func (g *Gui) SetTestRunner(runner *TestRunner) {
	g.testRunner = runner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step executes the next script action once the inject queue is drained and
// any wait has elapsed.
func (r *TestRunner) step(g *Gui) {
	if r.done {
		return
	}
	if len(g.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		g.Screenshot(st.Label)
	case "click":
		g.InjectClick(st.X, st.Y)
	case "drag":
		g.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "key":
		var mods KeyModifiers
		if st.Shift {
			mods |= ModShift
		}
		g.InjectKey(st.Key, mods)
	case "type":
		g.InjectChar(st.Text)
	case "wheel":
		g.InjectWheel(st.X, st.Y, st.DX, st.DY)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this step counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(g.injectQueue) == 0 {
		r.done = true
	}
}
