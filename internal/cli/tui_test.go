package cli

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/srcsetlab/pkg/imgparams"
	"github.com/matzehuels/srcsetlab/pkg/integrations/unsplash"
	"github.com/matzehuels/srcsetlab/pkg/sandbox"
)

func newTestModel(t *testing.T) sandboxModel {
	t.Helper()
	resolver := unsplash.ResolverFunc(func(_ context.Context, page string) (string, error) {
		if strings.HasSuffix(page, "missing") {
			return "", errors.New("photo not found")
		}
		return "https://images.unsplash.com/" + strings.TrimPrefix(page, "https://unsplash.com/photos/"), nil
	})
	return newSandboxModel(context.Background(), sandbox.New(resolver, nil), "https://unsplash.com/photos/a")
}

// run executes cmd synchronously and feeds its message back into m.
func run(t *testing.T, m sandboxModel, cmd tea.Cmd) sandboxModel {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	next, _ := m.Update(cmd())
	return next.(sandboxModel)
}

func press(m sandboxModel, keys ...tea.KeyMsg) sandboxModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(sandboxModel)
	}
	return m
}

var (
	keyUp    = tea.KeyMsg{Type: tea.KeyUp}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSandboxModelInit(t *testing.T) {
	m := newTestModel(t)
	m = run(t, m, m.Init())

	if got := m.sb.ImageURL(); got != "https://images.unsplash.com/a" {
		t.Fatalf("ImageURL() = %q", got)
	}
	view := m.View()
	if !strings.Contains(view, "<img") || !strings.Contains(view, "6 widths, 12 candidates") {
		t.Errorf("view missing markup:\n%s", view)
	}
}

func TestSandboxModelControls(t *testing.T) {
	m := newTestModel(t)
	m = run(t, m, m.Init())

	m = press(m, keyRight, keyRight)
	if got := m.sb.Params().NumBreakpoints; got != imgparams.DefaultNumBreakpoints+2 {
		t.Errorf("breakpoints = %d", got)
	}
	m = press(m, keyUp, keyLeft)
	if got := m.sb.Params().NumBreakpoints; got != imgparams.DefaultNumBreakpoints+1 {
		t.Errorf("cursor should stop at the first control, breakpoints = %d", got)
	}

	m = press(m, keyDown, keyRight)
	if got := m.sb.Params().MinWidth; got != imgparams.DefaultMinWidth+10 {
		t.Errorf("min width = %d", got)
	}

	// Retina is the fifth control.
	m = press(m, keyDown, keyDown, keyDown, keySpace)
	if m.sb.Params().Retina {
		t.Error("space should toggle retina off")
	}

	for i := 0; i < len(sandboxControls)+3; i++ {
		m = press(m, keyDown)
	}
	if m.cursor != len(sandboxControls)-1 {
		t.Errorf("cursor = %d, want last control", m.cursor)
	}
	m = press(m, keyRight)
	if got := m.sb.Params().FocalPointZ; got != imgparams.DefaultFocalPointZ+imgparams.ZoomRange.Step {
		t.Errorf("zoom = %v", got)
	}
}

func TestSandboxModelClamps(t *testing.T) {
	m := newTestModel(t)
	for i := 0; i < 20; i++ {
		m = press(m, keyLeft)
	}
	if got := m.sb.Params().NumBreakpoints; got != int(imgparams.BreakpointsRange.Min) {
		t.Errorf("breakpoints = %d, want clamp at %v", got, imgparams.BreakpointsRange.Min)
	}
}

func TestSandboxModelEditSource(t *testing.T) {
	m := newTestModel(t)
	m = run(t, m, m.Init())

	m = press(m, runes("/"))
	if !m.editing {
		t.Fatal("/ should start editing")
	}
	m = press(m, tea.KeyMsg{Type: tea.KeyCtrlU}, runes("https://unsplash.com/photos/b"))

	next, cmd := m.Update(keyEnter)
	m = next.(sandboxModel)
	if m.editing || !m.loading || m.source != "https://unsplash.com/photos/b" {
		t.Fatalf("after enter: editing=%v loading=%v source=%q", m.editing, m.loading, m.source)
	}
	m = run(t, m, cmd)
	if got := m.sb.ImageURL(); got != "https://images.unsplash.com/b" {
		t.Errorf("ImageURL() = %q", got)
	}
}

func TestSandboxModelDiscardsStaleLookup(t *testing.T) {
	m := newTestModel(t)
	first := m.Init()

	next, second := m.Update(runes("r"))
	m = next.(sandboxModel)

	// The first lookup finishes after the second one started.
	m = run(t, m, first)
	if m.sb.ImageURL() != "" {
		t.Error("stale lookup applied")
	}
	if !m.loading {
		t.Error("stale lookup ended loading")
	}

	m = run(t, m, second)
	if m.sb.ImageURL() == "" || m.loading {
		t.Error("current lookup not applied")
	}
}

func TestSandboxModelLookupFailure(t *testing.T) {
	m := newTestModel(t)
	m = run(t, m, m.Init())

	next, cmd := m.submit("https://unsplash.com/photos/missing")
	m = run(t, next.(sandboxModel), cmd)

	if got := m.sb.ImageURL(); got != "https://images.unsplash.com/a" {
		t.Errorf("failed lookup replaced the image: %q", got)
	}
	if !strings.Contains(m.View(), "photo not found") {
		t.Error("view should show the lookup error")
	}
}

func TestSandboxModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}
