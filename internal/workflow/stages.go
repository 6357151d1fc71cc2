package workflow

import (
	"fmt"

	"github.com/aretw0/grbflow/pkg/domain"
	"github.com/aretw0/grbflow/pkg/jobs"
	"github.com/aretw0/grbflow/pkg/registry"
	"github.com/aretw0/grbflow/pkg/tags"
)

// stage builds the jobs of one or more sections.
type stage struct {
	name     string
	phase    int
	sections []string
	build    func(b *builder) error
}

// phases groups stages by phase, keeping stage order inside each phase.
func phases(stages []stage) [][]stage {
	var out [][]stage
	for _, st := range stages {
		for len(out) <= st.phase {
			out = append(out, nil)
		}
		out[st.phase] = append(out[st.phase], st)
	}
	return out
}

// stages returns every stage in report order. Stages reading the loudest
// off-source data file run in the second phase.
func (d *Driver) stages(p *plan) []stage {
	out := []stage{
		{name: "summary", sections: []string{SectionSummary}, build: d.summary},
		{name: "timeseries", sections: []string{SectionTimeseries}, build: func(b *builder) error {
			return d.signalConsistency(b, SectionTimeseries, registry.SNRTimeseries, p.timeseries, nil, p.overlays)
		}},
		{name: "individual_detectors", sections: []string{SectionIndividualIFOs}, build: func(b *builder) error {
			return d.signalConsistency(b, SectionIndividualIFOs, registry.CohIFOSNR, p.ifoSNR, nil, p.overlays)
		}},
		{name: "chi_squared", sections: []string{SectionChiSquared}, build: func(b *builder) error {
			return d.signalConsistency(b, SectionChiSquared, registry.ChisqVeto, p.chisq, p.zooms, p.overlays)
		}},
		{name: "null_snrs", sections: []string{SectionNullSNRs}, build: func(b *builder) error {
			return d.signalConsistency(b, SectionNullSNRs, registry.NullStats, p.null, p.zooms, p.overlays)
		}},
		{name: "stats_distribution", sections: []string{SectionStatsDistribution}, build: func(b *builder) error {
			return d.statsDistribution(b, p.stats)
		}},
		{name: "loudest_offsource_events", sections: []string{SectionLoudestOffsource}, build: d.loudestOffsource},
	}

	for _, set := range d.injections {
		section := InjectionSection(set.Name)
		out = append(out, stage{name: section, sections: []string{section}, build: func(b *builder) error {
			return d.injectionSet(b, section, set, p)
		}})
	}

	if len(d.injections) > 0 {
		out = append(out, stage{name: "exclusion_distances", phase: 1,
			sections: []string{SectionExclusionDistances}, build: d.exclusionDistances})
	}
	out = append(out, stage{name: "open_box", phase: 1, sections: []string{SectionOpenBox}, build: d.openBox})
	return out
}

func (d *Driver) summary(b *builder) error {
	_, err := b.create(SectionSummary, jobs.Spec{Template: registry.InfoTable, Expect: 1})
	return err
}

// signalConsistency iterates kind x zoom x overlay. Only per-detector kinds
// loop over detectors; the detector is carried in the file prefix, not the tags.
// A nil zooms slice means the plot has no zoom variants.
func (d *Driver) signalConsistency(b *builder, section, template string, kinds []tags.Choice[kind], zooms []tags.Choice[tags.Zoom], overlays []tags.Choice[tags.Overlay]) error {
	if zooms == nil {
		zooms = []tags.Choice[tags.Zoom]{{Token: tags.None()}}
	}

	for _, k := range kinds {
		detectors := []string{""}
		if k.Value.perDetector {
			detectors = d.actx.Detectors
		}
		for _, z := range zooms {
			for _, o := range overlays {
				for _, ifo := range detectors {
					_, err := b.create(section, jobs.Spec{
						Template:      template,
						Detector:      ifo,
						InjectionFile: o.Value.File(),
						Tags:          tags.Build(nil, k.Token, z.Token, o.Token),
						Expect:        1,
					})
					if err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// statsDistribution plots the background distributions from the trigger file
// only; no injection file is attached.
func (d *Driver) statsDistribution(b *builder, kinds []tags.Choice[kind]) error {
	for _, k := range kinds {
		_, err := b.create(SectionStatsDistribution, jobs.Spec{
			Template: registry.StatsDistribution,
			Tags:     tags.Build(nil, k.Token),
			Expect:   1,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) loudestOffsource(b *builder) error {
	outs, err := b.create(SectionLoudestOffsource, jobs.Spec{
		Template: registry.PageTables,
		Tags:     tags.TagSet{"offsource"},
		Expect:   2,
	})
	if err != nil {
		return err
	}
	d.offsource = outs[1]
	return nil
}

// injectionSet builds the found/missed plots for every axes pair in both
// orientations, followed by the injection table.
func (d *Driver) injectionSet(b *builder, section string, set domain.InjectionSet, p *plan) error {
	setTok := tags.Some(set.Token())
	for _, a := range p.axes {
		for _, o := range p.orients {
			_, err := b.create(section, jobs.Spec{
				Template:      registry.InjsResults,
				InjectionFile: set.File,
				Tags:          tags.Build(nil, a.Token, o.Token, setTok),
				Expect:        1,
			})
			if err != nil {
				return err
			}
		}
	}

	_, err := b.create(section, jobs.Spec{
		Template:      registry.PageTables,
		InjectionFile: set.File,
		Tags:          tags.Build([]string{"injections"}, setTok),
		Expect:        2,
	})
	return err
}

func (d *Driver) exclusionDistances(b *builder) error {
	if d.offsource.Path == "" {
		return fmt.Errorf("loudest off-source events were not built")
	}
	for _, set := range d.injections {
		_, err := b.create(SectionExclusionDistances, jobs.Spec{
			Template:      registry.Efficiency,
			InjectionFile: set.File,
			Tags:          tags.Build(nil, tags.Some(set.Token())),
			Inputs:        []string{d.offsource.Path},
			Expect:        1,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) openBox(b *builder) error {
	if d.offsource.Path == "" {
		return fmt.Errorf("loudest off-source events were not built")
	}
	_, err := b.create(SectionOpenBox, jobs.Spec{
		Template: registry.PageTables,
		Tags:     tags.TagSet{"onsource"},
		Inputs:   []string{d.offsource.Path},
		Expect:   2,
	})
	return err
}
