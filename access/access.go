// Package access turns the server's entitlement flags into the three rendering branches a
// content viewer may take. It never computes entitlement itself.
package access

import "fmt"

// Kind tags the rendering branch.
type Kind int

const (
	Locked Kind = iota
	PreviewAvailable
	FullAccess
)

func (k Kind) String() string {
	switch k {
	case PreviewAvailable:
		return "preview"
	case FullAccess:
		return "open"
	default:
		return "locked"
	}
}

// State is the tagged union {Locked, PreviewAvailable(duration), FullAccess}.
// The zero value is Locked.
type State struct {
	kind            Kind
	previewDuration int
}

// Kind returns the branch tag.
func (s State) Kind() Kind { return s.kind }

// PreviewDuration is the preview limit in seconds; zero unless Kind is PreviewAvailable.
func (s State) PreviewDuration() int { return s.previewDuration }

func (s State) String() string {
	if s.kind == PreviewAvailable {
		return fmt.Sprintf("preview(%ds)", s.previewDuration)
	}
	return s.kind.String()
}

// Decide picks the branch for one content item. Full access always wins; without it only a
// positive preview duration unlocks anything.
func Decide(hasFullAccess bool, previewDuration int) State {
	if hasFullAccess {
		return State{kind: FullAccess}
	}
	if previewDuration > 0 {
		return State{kind: PreviewAvailable, previewDuration: previewDuration}
	}
	return State{kind: Locked}
}

// Entitlement is the server-computed access right for a user/course pair.
type Entitlement struct {
	HasFullAccess bool `json:"hasFullAccess"`
	IsExpired     bool `json:"isExpired"`
}

// DecideOptional treats a missing flag as no full access.
func DecideOptional(hasFullAccess *bool, previewDuration int) State {
	return Decide(hasFullAccess != nil && *hasFullAccess, previewDuration)
}
