package protection

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeSurface struct {
	menuErr  error
	panicSel bool
	blocked  []Shortcut
	overlays map[string]Placement
}

func (f *fakeSurface) SuppressContextMenu() error { return f.menuErr }

func (f *fakeSurface) SuppressSelection() error {
	if f.panicSel {
		panic("selection api missing")
	}
	return nil
}

func (f *fakeSurface) BlockShortcuts(blocked []Shortcut) error {
	f.blocked = blocked
	return nil
}

func (f *fakeSurface) AddOverlay(name string, png []byte, placement Placement) error {
	if len(png) == 0 {
		return errors.New("empty image")
	}
	if f.overlays == nil {
		f.overlays = map[string]Placement{}
	}
	f.overlays[name] = placement
	return nil
}

func fixedNow() time.Time { return time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC) }

func TestApplyAll(t *testing.T) {
	s := &fakeSurface{}
	report := Apply(s, Options{Identity: "ada@example.com", Width: 640, Height: 360, Now: fixedNow})

	assert.Empty(t, report.Failed)
	assert.Len(t, report.Applied, 5)
	assert.Equal(t, Blocked, s.blocked)
	assert.Equal(t, Fill, s.overlays["diagonal-watermark"])
	assert.Equal(t, BottomRight, s.overlays["corner-watermark"])
}

func TestApplyContainsFailures(t *testing.T) {
	s := &fakeSurface{menuErr: errors.New("denied"), panicSel: true}

	var report Report
	assert.NotPanics(t, func() {
		report = Apply(s, Options{Identity: "ada@example.com", Now: fixedNow})
	})
	// zero size makes the diagonal watermark fail as well
	assert.ElementsMatch(t, []string{"context-menu", "selection", "diagonal-watermark"}, report.Failed)
	assert.ElementsMatch(t, []string{"shortcuts", "corner-watermark"}, report.Applied)
}

func TestApplyWithoutSurface(t *testing.T) {
	var report Report
	assert.NotPanics(t, func() {
		report = Apply(nil, Options{Identity: "ada@example.com", Width: 64, Height: 64, Now: fixedNow})
	})
	assert.Empty(t, report.Applied)
	assert.Len(t, report.Failed, 5)
}

func TestIsBlocked(t *testing.T) {
	cases := []struct {
		ev   KeyEvent
		want bool
	}{
		{KeyEvent{Key: "s", Ctrl: true}, true},
		{KeyEvent{Key: "S", Meta: true}, true},
		{KeyEvent{Key: "p", Meta: true}, true},
		{KeyEvent{Key: "u", Ctrl: true}, true},
		{KeyEvent{Key: "F12"}, true},
		{KeyEvent{Key: "i", Ctrl: true, Shift: true}, true},
		{KeyEvent{Key: "J", Ctrl: true, Shift: true}, true},
		{KeyEvent{Key: "c", Ctrl: true, Shift: true}, true},
		{KeyEvent{Key: "c", Ctrl: true}, false},
		{KeyEvent{Key: "s"}, false},
		{KeyEvent{Key: "a", Ctrl: true}, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsBlocked(tc.ev), "%+v", tc.ev)
	}
}

func TestShortcutString(t *testing.T) {
	assert.Equal(t, "Ctrl/Cmd+S", Blocked[0].String())
	assert.Equal(t, "Ctrl+Shift+I", Blocked[4].String())
	assert.Equal(t, "F12", Blocked[3].String())
}
