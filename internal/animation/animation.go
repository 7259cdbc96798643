// Package animation stores keyframed transform channels and samples them to
// pose a model's groups and objects.
package animation

import (
	"errors"
	"fmt"
	gomath "math"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/Faultbox/modeler/pkg/math"
)

// ErrUnknownInterpolation is returned when parsing an unsupported
// interpolation name.
var ErrUnknownInterpolation = errors.New("unknown interpolation")

// Interpolation selects how a channel blends between keyframes.
type Interpolation int

const (
	Linear Interpolation = iota
	Step
	Cosine
)

func (i Interpolation) String() string {
	switch i {
	case Linear:
		return "LINEAR"
	case Step:
		return "STEP"
	case Cosine:
		return "COSINE"
	}
	return fmt.Sprintf("Interpolation(%d)", int(i))
}

// ParseInterpolation parses the names produced by String, ignoring case.
func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToUpper(s) {
	case "LINEAR":
		return Linear, nil
	case "STEP":
		return Step, nil
	case "COSINE":
		return Cosine, nil
	}
	return Linear, fmt.Errorf("interpolation %q: %w", s, ErrUnknownInterpolation)
}

// ChannelRef identifies a channel.
type ChannelRef uuid.UUID

func NewChannelRef() ChannelRef { return ChannelRef(uuid.New()) }

func (r ChannelRef) String() string { return uuid.UUID(r).String() }

// Keyframe is the transform offset a channel reaches at Time seconds.
type Keyframe struct {
	Time  float64
	Value math.TRS
}

// Channel animates one group or object, identified by Target.
type Channel struct {
	Ref           ChannelRef
	Name          string
	Target        uuid.UUID
	Interpolation Interpolation
	Enabled       bool
	Keyframes     []Keyframe
}

// NewChannel creates an enabled linear channel. Keyframes are sorted by time.
func NewChannel(name string, target uuid.UUID, keyframes ...Keyframe) Channel {
	c := Channel{
		Ref:       NewChannelRef(),
		Name:      name,
		Target:    target,
		Enabled:   true,
		Keyframes: slices.Clone(keyframes),
	}
	c.sortKeyframes()
	return c
}

func (c *Channel) sortKeyframes() {
	slices.SortStableFunc(c.Keyframes, func(a, b Keyframe) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})
}

// Sample returns the channel's value at time. Before the first and after the
// last keyframe the nearest keyframe's value is held. A channel without
// keyframes yields the identity.
func (c Channel) Sample(time float64) math.TRS {
	keys := c.Keyframes
	if len(keys) == 0 {
		return math.IdentityTRS()
	}
	if len(keys) == 1 {
		return keys[0].Value
	}

	// Find surrounding keyframes
	var prev, next int
	for i := range keys {
		if keys[i].Time > time {
			next = i
			break
		}
		prev = i
		next = i
	}
	if prev == next {
		return keys[prev].Value
	}

	k0, k1 := keys[prev], keys[next]
	t := 0.0
	if k1.Time != k0.Time {
		t = (time - k0.Time) / (k1.Time - k0.Time)
	}

	switch c.Interpolation {
	case Step:
		return k0.Value
	case Cosine:
		t = (1 - gomath.Cos(t*gomath.Pi)) / 2
	}
	return blend(k0.Value, k1.Value, t)
}

func blend(a, b math.TRS, t float64) math.TRS {
	return math.TRS{
		Translation: a.Translation.Lerp(b.Translation, t),
		Rotation:    a.Rotation.Slerp(b.Rotation, t),
		Scale:       a.Scale.Lerp(b.Scale, t),
	}
}

// Animation is a set of channels over a timeline of Length seconds.
type Animation struct {
	Channels map[ChannelRef]Channel
	Length   float64
}

// New returns an empty animation of the given length.
func New(length float64) *Animation {
	return &Animation{Channels: make(map[ChannelRef]Channel), Length: length}
}

// WithChannel returns a copy of a with c added or replaced.
func (a *Animation) WithChannel(c Channel) *Animation {
	out := &Animation{Channels: make(map[ChannelRef]Channel, len(a.Channels)+1), Length: a.Length}
	for k, v := range a.Channels {
		out.Channels[k] = v
	}
	c.sortKeyframes()
	out.Channels[c.Ref] = c
	return out
}

// WithoutChannel returns a copy of a without channel ref.
func (a *Animation) WithoutChannel(ref ChannelRef) *Animation {
	if _, ok := a.Channels[ref]; !ok {
		return a
	}
	out := &Animation{Channels: make(map[ChannelRef]Channel, len(a.Channels)), Length: a.Length}
	for k, v := range a.Channels {
		if k != ref {
			out.Channels[k] = v
		}
	}
	return out
}

// SortedChannels returns the channels ordered by name, then reference.
func (a *Animation) SortedChannels() []Channel {
	out := make([]Channel, 0, len(a.Channels))
	for _, c := range a.Channels {
		out = append(out, c)
	}
	slices.SortFunc(out, func(x, y Channel) int {
		if c := strings.Compare(x.Name, y.Name); c != 0 {
			return c
		}
		return strings.Compare(x.Ref.String(), y.Ref.String())
	})
	return out
}

// Animator poses a model at a point of an animation's timeline.
type Animator struct {
	Animation *Animation
	Time      float64
}

// Animate applies every enabled channel targeting id to rest. Channel
// values act inside the rest transform.
func (an Animator) Animate(id uuid.UUID, rest math.TRS) math.TRS {
	if an.Animation == nil {
		return rest
	}
	result := rest
	for _, c := range an.Animation.SortedChannels() {
		if !c.Enabled || c.Target != id {
			continue
		}
		result = result.Times(c.Sample(an.Time))
	}
	return result
}
