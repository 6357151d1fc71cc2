package workflow

import (
	"github.com/aretw0/grbflow/pkg/domain"
	"github.com/aretw0/grbflow/pkg/sections"
)

// Section paths of the report.
const (
	SectionSummary            = "summary"
	SectionTimeseries         = "signal_consistency/timeseries"
	SectionIndividualIFOs     = "signal_consistency/individual_detectors"
	SectionChiSquared         = "signal_consistency/chi_squared"
	SectionNullSNRs           = "signal_consistency/null_snrs"
	SectionStatsDistribution  = "background/stats_distribution"
	SectionLoudestOffsource   = "loudest_offsource_events"
	SectionInjections         = "injections"
	SectionExclusionDistances = "exclusion_distances"
	SectionOpenBox            = "open_box"
)

// InjectionSection returns the section of one injection set.
func InjectionSection(set string) string {
	return SectionInjections + "/" + set
}

// DeclareSections declares the report hierarchy, with one child of
// "injections" per injection set.
func DeclareSections(tree *sections.Tree, sets []domain.InjectionSet) error {
	injections := sections.Spec{Name: SectionInjections}
	for _, s := range sets {
		injections.Children = append(injections.Children, sections.Spec{Name: s.Name, Title: s.Token()})
	}

	return tree.Declare(
		sections.Spec{Name: "summary"},
		sections.Spec{Name: "signal_consistency", Children: []sections.Spec{
			{Name: "timeseries"},
			{Name: "individual_detectors"},
			{Name: "chi_squared", Title: "Chi-Squared"},
			{Name: "null_snrs", Title: "Null SNRs"},
		}},
		sections.Spec{Name: "background", Children: []sections.Spec{
			{Name: "stats_distribution"},
		}},
		sections.Spec{Name: "loudest_offsource_events"},
		injections,
		sections.Spec{Name: "exclusion_distances"},
		sections.Spec{Name: "open_box"},
	)
}
