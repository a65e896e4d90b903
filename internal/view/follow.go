package view

import "github.com/TimelordUK/logview/internal/index"

// FollowState is whether the view tracks the newest content
type FollowState int

const (
	// NotFollowing leaves the scroll position alone on document changes
	NotFollowing FollowState = iota
	// Following scrolls to the end after every document change
	Following
)

func (s FollowState) String() string {
	if s == Following {
		return "following"
	}
	return "not following"
}

// ScrollTarget is anything that can be scrolled to its end
type ScrollTarget interface {
	ScrollToEnd()
}

// Follower keeps a target scrolled to the end after document changes.
// Follow is sticky: scrolling by hand does not cancel it, only SetEnabled
// does.
type Follower struct {
	state  FollowState
	target ScrollTarget
}

// NewFollower creates a follower in the initial state given by enabled
func NewFollower(enabled bool, target ScrollTarget) *Follower {
	f := &Follower{target: target}
	f.SetEnabled(enabled)
	return f
}

// SetEnabled reconfigures follow
func (f *Follower) SetEnabled(enabled bool) {
	if enabled {
		f.state = Following
	} else {
		f.state = NotFollowing
	}
}

// State returns the current state
func (f *Follower) State() FollowState {
	return f.state
}

// Following reports whether follow is on
func (f *Follower) Following() bool {
	return f.state == Following
}

// DocumentChanged is called after every document mutation. It reports
// whether the target was scrolled.
func (f *Follower) DocumentChanged(index.Change) bool {
	if f.state != Following || f.target == nil {
		return false
	}
	f.target.ScrollToEnd()
	return true
}
