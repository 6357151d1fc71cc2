package config

import (
	"fmt"
	"reflect"

	"github.com/aretw0/grbflow/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Section names with a fixed meaning.
const (
	WorkflowSection   = "workflow"
	IFOsSection       = "workflow-ifos"
	InjectionsSection = "injections"
)

// Settings are the typed options of the [workflow] section.
type Settings struct {
	Name      string `mapstructure:"name"`
	StartTime int64  `mapstructure:"start-time"`
	EndTime   int64  `mapstructure:"end-time"`

	// TuningInjectionSet names the injection set overlaid on the signal
	// consistency plots. Empty disables overlays.
	TuningInjectionSet string `mapstructure:"tuning-injection-set"`

	Timeseries        []string `mapstructure:"timeseries"`
	IFOSNRStats       []string `mapstructure:"ifo-snr-stats"`
	ChisqVetoes       []string `mapstructure:"chisq-vetoes"`
	NullSNRStats      []string `mapstructure:"null-snr-stats"`
	StatDistributions []string `mapstructure:"stat-distributions"`
	FoundMissedAxes   []string `mapstructure:"found-missed-axes"`
	ZoomVariants      []string `mapstructure:"zoom-variants"`

	PageArity int `mapstructure:"page-arity"`
}

// DefaultSettings returns the settings used for options missing from the file.
func DefaultSettings() Settings {
	return Settings{
		Name:              "GRB",
		Timeseries:        []string{"coherent", "single", "reweighted", "null"},
		IFOSNRStats:       []string{"coherent"},
		ChisqVetoes:       []string{"standard", "bank", "auto"},
		NullSNRStats:      []string{"null", "coincident", "phasefac"},
		StatDistributions: []string{"coherent", "reweighted"},
		FoundMissedAxes:   []string{"time:effective_distance", "chirp_mass:effective_distance"},
		ZoomVariants:      []string{"zoomin", "zoomout"},
		PageArity:         2,
	}
}

// LoadSettings decodes the [workflow] section on top of DefaultSettings.
func LoadSettings(s *Store) (Settings, error) {
	settings := DefaultSettings()
	if !s.HasSection(WorkflowSection) {
		return settings, fmt.Errorf("%w: missing section [%s]", domain.ErrConfig, WorkflowSection)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       listHook,
		WeaklyTypedInput: true,
		ErrorUnused:      false,
		Result:           &settings,
	})
	if err != nil {
		return settings, err
	}
	if err := decoder.Decode(s.Section(WorkflowSection)); err != nil {
		return settings, fmt.Errorf("%w: [%s]: %v", domain.ErrConfig, WorkflowSection, err)
	}

	if settings.EndTime <= settings.StartTime {
		return settings, fmt.Errorf("%w: end-time (%d) must be after start-time (%d)",
			domain.ErrConfig, settings.EndTime, settings.StartTime)
	}
	if settings.PageArity < 1 {
		return settings, fmt.Errorf("%w: page-arity must be positive", domain.ErrConfig)
	}
	return settings, nil
}

// listHook splits string options destined for []string fields.
func listHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
		return data, nil
	}
	return SplitList(data.(string)), nil
}
