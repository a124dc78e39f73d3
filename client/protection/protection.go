// Package protection applies deterrents to a content viewer: no context menu, no text
// selection, blocked save/print/devtools shortcuts and identity watermarks.
//
// None of this is a security boundary. Anyone who can play the file can capture it; the
// deterrents only make casual copying less convenient and attributable.
package protection

import (
	"fmt"
	"strings"
	"time"

	"innerspark/graphics"
	"innerspark/logger"
)

// Shortcut is a key combination. Mod matches either Ctrl or Cmd.
type Shortcut struct {
	Key   string
	Mod   bool
	Ctrl  bool
	Shift bool
}

func (s Shortcut) String() string {
	var parts []string
	if s.Mod {
		parts = append(parts, "Ctrl/Cmd")
	}
	if s.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if s.Shift {
		parts = append(parts, "Shift")
	}
	return strings.Join(append(parts, s.Key), "+")
}

// Blocked lists the suppressed shortcuts: save, print, view source and the devtools keys.
var Blocked = []Shortcut{
	{Key: "S", Mod: true},
	{Key: "P", Mod: true},
	{Key: "U", Mod: true},
	{Key: "F12"},
	{Key: "I", Ctrl: true, Shift: true},
	{Key: "J", Ctrl: true, Shift: true},
	{Key: "C", Ctrl: true, Shift: true},
}

// KeyEvent is a key press as a surface reports it.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Meta  bool
	Shift bool
}

// IsBlocked reports whether a surface should swallow ev.
func IsBlocked(ev KeyEvent) bool {
	key := strings.ToUpper(ev.Key)
	for _, s := range Blocked {
		if s.Key != key {
			continue
		}
		switch {
		case s.Mod:
			if ev.Ctrl || ev.Meta {
				return true
			}
		case s.Ctrl:
			if ev.Ctrl && ev.Shift == s.Shift {
				return true
			}
		default:
			return true
		}
	}
	return false
}

type Placement int

const (
	Fill Placement = iota
	BottomRight
)

// Surface is the viewer widget the deterrents act on.
type Surface interface {
	SuppressContextMenu() error
	SuppressSelection() error
	BlockShortcuts(blocked []Shortcut) error
	AddOverlay(name string, png []byte, placement Placement) error
}

type Options struct {
	// Identity is drawn into both watermarks, usually the viewer's email.
	Identity string
	Width    int
	Height   int
	Now      func() time.Time
}

// Report lists which deterrents took effect.
type Report struct {
	Applied []string
	Failed  []string
}

// Apply runs every deterrent independently. A failing or panicking one is logged and skipped;
// Apply itself never fails.
func Apply(s Surface, opts Options) Report {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	steps := []struct {
		name string
		run  func() error
	}{
		{"context-menu", func() error { return s.SuppressContextMenu() }},
		{"selection", func() error { return s.SuppressSelection() }},
		{"shortcuts", func() error { return s.BlockShortcuts(Blocked) }},
		{"diagonal-watermark", func() error {
			img, err := graphics.DiagonalWatermark(opts.Width, opts.Height, opts.Identity)
			if err != nil {
				return err
			}
			return s.AddOverlay("diagonal-watermark", img, Fill)
		}},
		{"corner-watermark", func() error {
			img, err := graphics.CornerWatermark(opts.Identity, opts.Now())
			if err != nil {
				return err
			}
			return s.AddOverlay("corner-watermark", img, BottomRight)
		}},
	}

	var report Report
	for _, step := range steps {
		if err := safely(step.run); err != nil {
			logger.Log.Warn("deterrent not applied", "step", step.name, "error", err)
			report.Failed = append(report.Failed, step.name)
			continue
		}
		report.Applied = append(report.Applied, step.name)
	}
	return report
}

func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
