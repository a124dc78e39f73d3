// Package viewer opens one course module for display. It resolves the caller's entitlement,
// then fetches the gated file, then starts a preview session when only a preview is allowed.
// Every opened viewer must be closed; Close releases the file handle exactly once.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"innerspark/access"
	"innerspark/client"
	"innerspark/client/preview"
	"innerspark/client/protection"
	"innerspark/client/securefile"
	"innerspark/models"
	courseModels "innerspark/models/course"
)

var (
	// ErrLocked means the caller may not open the module at all.
	ErrLocked   = errors.New("no access")
	ErrNotFound = errors.New("content not found")
)

// Source is the API the viewer reads from. *client.Client satisfies it.
type Source interface {
	GetCourse(ctx context.Context, courseID uint) (*client.CourseDetail, error)
	securefile.Fetcher
}

// Tracker receives engagement events. *client.Client satisfies it.
type Tracker interface {
	Track(ctx context.Context, ev client.Event)
}

type Options struct {
	Registry *securefile.Registry
	// Player is required for preview playback.
	Player preview.Player
	// Overlay shows the enrollment prompt when a preview ends.
	Overlay func()
	// Tick receives the remaining preview seconds.
	Tick    func(remaining float64)
	Tracker Tracker
	// Surface, when set, gets the deterrent protections.
	Surface    protection.Surface
	Protection protection.Options
}

type Viewer struct {
	courseID uint
	content  client.Content
	state    access.State
	handle   string
	session  *preview.Session
	release  func()
	once     sync.Once
}

// Open resolves access for moduleID of courseID and loads it. On error nothing stays open.
func Open(ctx context.Context, src Source, courseID, moduleID uint, opts Options) (*Viewer, error) {
	detail, err := src.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, client.ErrMalformed) {
			return nil, fmt.Errorf("%w: %v", ErrLocked, err)
		}
		return nil, fmt.Errorf("%w: %v", securefile.ErrLoadFailed, err)
	}
	content, ok := detail.ContentByID(moduleID)
	if !ok {
		return nil, ErrNotFound
	}

	duration := 0
	if content.ContentType == courseModels.ContentVideo {
		duration = content.PreviewDuration
	}
	v := &Viewer{
		courseID: courseID,
		content:  content,
		state:    access.DecideOptional(detail.HasFullAccess, duration),
	}
	if v.state.Kind() == access.Locked {
		return nil, ErrLocked
	}

	// Rich text arrives inline with the detail; everything else is a gated file.
	if content.FileURL != "" {
		reg := opts.Registry
		if reg == nil {
			reg = securefile.NewRegistry()
		}
		handle, release, err := securefile.Load(ctx, src, reg, moduleID)
		if err != nil {
			return nil, err
		}
		v.handle, v.release = handle, release
	}

	if v.state.Kind() == access.PreviewAvailable {
		if opts.Player == nil {
			v.Close()
			return nil, errors.New("preview playback needs a player")
		}
		session, err := preview.NewSession(content.ID, v.state, opts.Player, v.hooks(ctx, opts))
		if err == nil {
			err = session.Start()
		}
		if err != nil {
			v.Close()
			return nil, err
		}
		v.session = session
	}

	if opts.Surface != nil {
		protection.Apply(opts.Surface, opts.Protection)
	}
	return v, nil
}

func (v *Viewer) hooks(ctx context.Context, opts Options) preview.Hooks {
	hooks := preview.Hooks{Overlay: opts.Overlay, Tick: opts.Tick}
	if opts.Tracker != nil {
		hooks.Completed = func(contentID uint, duration int) {
			opts.Tracker.Track(ctx, client.Event{
				CourseID: v.courseID,
				Type:     models.EventPreviewCompleted,
				Metadata: map[string]interface{}{"contentId": contentID, "previewDuration": duration},
			})
		}
	}
	return hooks
}

// Close stops any preview watcher and releases the file handle. Repeated calls do nothing.
func (v *Viewer) Close() {
	v.once.Do(func() {
		if v.session != nil {
			v.session.Close()
		}
		if v.release != nil {
			v.release()
		}
	})
}

func (v *Viewer) State() access.State { return v.state }

func (v *Viewer) Content() client.Content { return v.content }

// Handle is the blob handle of the loaded file, empty for inline content.
func (v *Viewer) Handle() string { return v.handle }

// Session is the preview session, nil unless the viewer is in preview mode.
func (v *Viewer) Session() *preview.Session { return v.session }
