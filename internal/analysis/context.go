// Package analysis builds the immutable AnalysisContext from the configuration
// and the input datasets.
package analysis

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/grbflow/internal/config"
	"github.com/aretw0/grbflow/pkg/domain"
)

// Inputs are the datasets given on the command line.
type Inputs struct {
	TriggerFile    string
	InjectionFiles []string
}

// New builds the analysis context. A tuning injection set that cannot be
// matched to exactly one file degrades to "no overlay" and is logged.
func New(store *config.Store, settings config.Settings, in Inputs, logger *slog.Logger) (*domain.AnalysisContext, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if in.TriggerFile == "" {
		return nil, fmt.Errorf("%w: a trigger file is required", domain.ErrConfig)
	}

	detectors, err := Detectors(store)
	if err != nil {
		return nil, err
	}

	actx := &domain.AnalysisContext{
		Detectors:      detectors,
		TriggerFile:    in.TriggerFile,
		InjectionFiles: append([]string(nil), in.InjectionFiles...),
		Segment:        domain.Segment{Start: settings.StartTime, End: settings.EndTime},
		Config:         store,
	}

	if settings.TuningInjectionSet != "" {
		file, err := MatchInjectionFile(in.InjectionFiles, settings.TuningInjectionSet)
		switch {
		case err == nil:
			actx.Tuning = &domain.InjectionSet{Name: settings.TuningInjectionSet, File: file}
			logger.Info("Resolved tuning injection file.", "set", settings.TuningInjectionSet, "file", file)
		case errors.Is(err, domain.ErrNoMatch), errors.Is(err, domain.ErrAmbiguousMatch):
			logger.Warn("Tuning injection set unavailable, injection overlays disabled.",
				"set", settings.TuningInjectionSet, "error", err)
		default:
			return nil, err
		}
	}

	return actx, nil
}

// Detectors returns the detectors with data, taken from the keys of the
// [workflow-ifos] section, upper-cased and sorted.
func Detectors(store *config.Store) ([]string, error) {
	if !store.HasSection(config.IFOsSection) {
		return nil, fmt.Errorf("%w: missing section [%s]", domain.ErrConfig, config.IFOsSection)
	}

	seen := make(map[string]bool)
	var out []string
	for _, k := range store.Keys(config.IFOsSection) {
		ifo := strings.ToUpper(strings.TrimSpace(k))
		if ifo == "" || seen[ifo] {
			continue
		}
		seen[ifo] = true
		out = append(out, ifo)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no detectors configured in [%s]", domain.ErrConfig, config.IFOsSection)
	}
	sort.Strings(out)
	return out, nil
}

// MatchInjectionFile returns the single file whose base name contains set,
// compared case-insensitively.
func MatchInjectionFile(files []string, set string) (string, error) {
	needle := strings.ToLower(set)
	var matches []string
	for _, f := range files {
		if strings.Contains(strings.ToLower(filepath.Base(f)), needle) {
			matches = append(matches, f)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w for set %q", domain.ErrNoMatch, set)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("%w for set %q: %s", domain.ErrAmbiguousMatch, set, strings.Join(matches, ", "))
}

// InjectionSets resolves every configured injection set ([injections-<name>])
// to its file. The match uses the set's injection-file-tag when present.
// Exactly one match is required for each set.
func InjectionSets(store *config.Store, files []string) ([]domain.InjectionSet, error) {
	var out []domain.InjectionSet
	for _, name := range store.Subsections(config.InjectionsSection) {
		tag := store.GetDefault(config.InjectionsSection+"-"+name, "injection-file-tag", name)
		file, err := MatchInjectionFile(files, tag)
		if err != nil {
			return nil, fmt.Errorf("%w: injection set %q: %w", domain.ErrConfig, name, err)
		}
		out = append(out, domain.InjectionSet{Name: name, File: file})
	}
	return out, nil
}
