package sprig

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"
)

// captureStderr runs fn with os.Stderr redirected and returns what it wrote.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w
	fn()
	w.Close()
	os.Stderr = oldStderr

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestDebugMode_DisposedChildPanics(t *testing.T) {
	parent := NewPanel("parent")
	g := openGui(t, parent)
	g.SetDebugMode(true)
	defer g.SetDebugMode(false)

	child := NewPanel("child")
	child.Dispose()

	expectPanic(t, "disposed", func() { parent.AddChild(child) })
}

func TestDebugMode_DisposedParentPanics(t *testing.T) {
	g := New(DefaultConfig())
	g.SetDebugMode(true)
	defer g.SetDebugMode(false)

	parent := NewPanel("parent")
	parent.Dispose()

	expectPanic(t, `AddChild (parent) on disposed widget "parent"`, func() { parent.AddChild(NewPanel("child")) })
}

func TestReleaseMode_DisposedChildNoPanic(t *testing.T) {
	parent := NewPanel("parent")
	child := NewPanel("child")
	child.Dispose()

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("unexpected panic outside debug mode: %v", r)
		}
	}()
	parent.AddChild(child)
}

func TestDebugMode_TreeDepthWarning(t *testing.T) {
	g := New(DefaultConfig())
	g.SetDebugMode(true)
	defer g.SetDebugMode(false)

	output := captureStderr(t, func() {
		current := NewPanel("root")
		for i := 0; i < debugMaxTreeDepth+5; i++ {
			child := NewPanel(fmt.Sprintf("depth_%d", i))
			current.AddChild(child)
			current = child
		}
	})
	if !strings.Contains(output, "[sprig] warning: tree depth") {
		t.Errorf("expected tree depth warning in stderr, got: %q", output)
	}
}

func TestDebugMode_ChildCountWarning(t *testing.T) {
	g := New(DefaultConfig())
	g.SetDebugMode(true)
	defer g.SetDebugMode(false)

	output := captureStderr(t, func() {
		parent := NewPanel("many_children")
		for i := 0; i < debugMaxChildCount+1; i++ {
			parent.AddChild(NewPanel(fmt.Sprintf("c_%d", i)))
		}
	})
	if !strings.Contains(output, `widget "many_children" has 1001 children`) {
		t.Errorf("expected child count warning in stderr, got: %q", output)
	}
}

func TestDebugMode_FrameStats(t *testing.T) {
	g := openGui(t, NewPanel("a"), NewPanel("b"))
	g.SetDebugMode(true)
	defer g.SetDebugMode(false)

	output := captureStderr(t, func() { g.Frame(0, nil) })
	if !strings.Contains(output, "[sprig] layout:") || !strings.Contains(output, "widgets: 2") {
		t.Errorf("expected frame stats in stderr, got: %q", output)
	}
}

func TestCheckBalance(t *testing.T) {
	g := New(DefaultConfig())
	g.clips.Push(Rect{Width: 1, Height: 1})

	buf := captureLog(t)
	g.checkBalance(0, 1)
	if !strings.Contains(buf.String(), "clipAfter=1") {
		t.Errorf("log = %q, want clipAfter=1", buf.String())
	}

	g.SetDebugMode(true)
	defer g.SetDebugMode(false)
	expectPanic(t, "unbalanced stacks", func() { g.checkBalance(0, 1) })

	g.clips.Pop()
	g.checkBalance(0, 1)
}
