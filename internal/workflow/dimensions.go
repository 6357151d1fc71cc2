package workflow

import (
	"fmt"

	"github.com/aretw0/grbflow/internal/config"
	"github.com/aretw0/grbflow/pkg/domain"
	"github.com/aretw0/grbflow/pkg/tags"
)

// kind is one configured plot kind of a statistic dimension.
type kind struct {
	name        string
	perDetector bool
}

// Token contributes the kind name.
func (k kind) Token() tags.Token {
	return tags.Some(k.name)
}

// dimension maps the values of one configuration option to plot kinds.
type dimension struct {
	option string

	// known maps each accepted value to whether it loops over detectors.
	known map[string]bool
}

var (
	timeseriesDim = dimension{option: "timeseries", known: map[string]bool{
		"coherent": false, "single": true, "reweighted": false, "null": false,
	}}
	ifoSNRDim = dimension{option: "ifo-snr-stats", known: map[string]bool{
		"coherent": true, "null": true, "reweighted": true,
	}}
	chisqDim = dimension{option: "chisq-vetoes", known: map[string]bool{
		"standard": false, "bank": false, "auto": false,
	}}
	nullDim = dimension{option: "null-snr-stats", known: map[string]bool{
		"null": false, "coincident": false, "phasefac": false,
	}}
	statsDim = dimension{option: "stat-distributions", known: map[string]bool{
		"coherent": false, "reweighted": false, "bestnr": false, "single": false,
	}}
)

// kinds maps configured values, keeping their order. Unknown values are fatal.
func (d dimension) kinds(values []string) ([]kind, error) {
	seen := make(map[string]bool, len(values))
	out := make([]kind, 0, len(values))
	for _, v := range values {
		perDetector, ok := d.known[v]
		if !ok {
			return nil, fmt.Errorf("%w: %s value %q has no report section", domain.ErrMissingMapping, d.option, v)
		}
		if seen[v] {
			return nil, fmt.Errorf("%w: %s lists %q twice", domain.ErrConfig, d.option, v)
		}
		seen[v] = true
		out = append(out, kind{name: v, perDetector: perDetector})
	}
	return out, nil
}

// plan is the validated cross product input of every stage.
type plan struct {
	timeseries []tags.Choice[kind]
	ifoSNR     []tags.Choice[kind]
	chisq      []tags.Choice[kind]
	null       []tags.Choice[kind]
	stats      []tags.Choice[kind]
	zooms      []tags.Choice[tags.Zoom]
	axes       []tags.Choice[tags.Axes]
	overlays   []tags.Choice[tags.Overlay]
	orients    []tags.Choice[tags.Orientation]
}

func newPlan(s config.Settings, tuning *domain.InjectionSet) (*plan, error) {
	p := &plan{
		overlays: tags.Expand(tags.Overlays(tuning)),
		orients:  tags.Expand(tags.Orientations),
	}

	dims := []struct {
		dim    dimension
		values []string
		dst    *[]tags.Choice[kind]
	}{
		{timeseriesDim, s.Timeseries, &p.timeseries},
		{ifoSNRDim, s.IFOSNRStats, &p.ifoSNR},
		{chisqDim, s.ChisqVetoes, &p.chisq},
		{nullDim, s.NullSNRStats, &p.null},
		{statsDim, s.StatDistributions, &p.stats},
	}
	for _, d := range dims {
		ks, err := d.dim.kinds(d.values)
		if err != nil {
			return nil, err
		}
		*d.dst = tags.Expand(ks)
	}

	zooms := make([]tags.Zoom, 0, len(s.ZoomVariants))
	seenZoom := make(map[tags.Zoom]bool, len(s.ZoomVariants))
	for _, v := range s.ZoomVariants {
		z, err := tags.ParseZoom(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMissingMapping, err)
		}
		if seenZoom[z] {
			return nil, fmt.Errorf("%w: zoom-variants lists %q twice", domain.ErrConfig, v)
		}
		seenZoom[z] = true
		zooms = append(zooms, z)
	}
	if len(zooms) == 0 {
		zooms = tags.Zooms
	}
	p.zooms = tags.Expand(zooms)

	axes := make([]tags.Axes, 0, len(s.FoundMissedAxes))
	seenAxes := make(map[tags.Axes]bool, len(s.FoundMissedAxes))
	for _, v := range s.FoundMissedAxes {
		a, err := tags.ParseAxes(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrConfig, err)
		}
		if seenAxes[a] {
			return nil, fmt.Errorf("%w: found-missed-axes lists %q twice", domain.ErrConfig, v)
		}
		seenAxes[a] = true
		axes = append(axes, a)
	}
	p.axes = tags.Expand(axes)

	return p, nil
}
