package tags

import (
	"fmt"
	"strings"

	"github.com/aretw0/grbflow/pkg/domain"
)

// Choice is one value of an enumerated dimension together with the token it
// contributes to the tag set.
type Choice[T any] struct {
	Value T
	Token Token
}

// Expand turns the iterated values of a dimension into choices. A dimension
// that degenerates to a single value contributes no token, which keeps
// filenames short without risking collisions.
func Expand[T Tokener](values []T) []Choice[T] {
	out := make([]Choice[T], len(values))
	for i, v := range values {
		tok := v.Token()
		if len(values) == 1 {
			tok = None()
		}
		out[i] = Choice[T]{Value: v, Token: tok}
	}
	return out
}

// Overlay is the injection-overlay dimension: either no injections or the
// tuning injection set.
type Overlay struct {
	set *domain.InjectionSet
}

// NoOverlay is the overlay without injections.
func NoOverlay() Overlay {
	return Overlay{}
}

// WithInjections returns an overlay of the given injection set.
func WithInjections(set domain.InjectionSet) Overlay {
	return Overlay{set: &set}
}

// Overlays returns the overlay dimension for an optional tuning set:
// {none} when tuning is nil, {none, tuning} otherwise.
func Overlays(tuning *domain.InjectionSet) []Overlay {
	if tuning == nil {
		return []Overlay{NoOverlay()}
	}
	return []Overlay{NoOverlay(), WithInjections(*tuning)}
}

// Token contributes the injection set name iff an injection file is attached.
func (o Overlay) Token() Token {
	if o.set == nil {
		return None()
	}
	return Some(o.set.Token())
}

// File returns the attached injection file, empty for NoOverlay.
func (o Overlay) File() string {
	if o.set == nil {
		return ""
	}
	return o.set.File
}

// Zoom selects the zoomed-in or zoomed-out rendering of a plot.
type Zoom int

const (
	ZoomIn Zoom = iota
	ZoomOut
)

// Zooms is the default zoom dimension.
var Zooms = []Zoom{ZoomIn, ZoomOut}

func (z Zoom) String() string {
	if z == ZoomIn {
		return "zoomin"
	}
	return "zoomout"
}

// Token contributes "zoomin" or "zoomout".
func (z Zoom) Token() Token {
	return Some(z.String())
}

// ParseZoom parses "zoomin" or "zoomout".
func ParseZoom(s string) (Zoom, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zoomin":
		return ZoomIn, nil
	case "zoomout":
		return ZoomOut, nil
	}
	return 0, fmt.Errorf("invalid zoom variant %q", s)
}

// Orientation controls which injection population is drawn on top in
// found/missed plots. Both orientations are always produced.
type Orientation int

const (
	MissedOnTop Orientation = iota
	FoundOnTop
)

// Orientations is the fixed found/missed orientation dimension.
var Orientations = []Orientation{MissedOnTop, FoundOnTop}

func (o Orientation) String() string {
	if o == MissedOnTop {
		return "missed-on-top"
	}
	return "found-on-top"
}

// Token always contributes the orientation name.
func (o Orientation) Token() Token {
	return Some(o.String())
}

// Axes is a pair of injection parameters plotted against each other.
type Axes struct {
	X string
	Y string
}

// ParseAxes parses an "x:y" pair.
func ParseAxes(s string) (Axes, error) {
	x, y, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || x == "" || y == "" {
		return Axes{}, fmt.Errorf("invalid axes %q: expected x:y", s)
	}
	return Axes{X: x, Y: y}, nil
}

// Token contributes "y_vs_x".
func (a Axes) Token() Token {
	return Some(a.Y + "_vs_" + a.X)
}

func (a Axes) String() string {
	return a.X + ":" + a.Y
}
