// Package config provides the plan loader for kiln.
package config

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/kilnbuild/kiln/internal/core/domain"
	"github.com/kilnbuild/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.PlanLoader = (*FilePlanLoader)(nil)

// DefaultFilename is the plan file name looked up in the working directory.
const DefaultFilename = "kiln.yaml"

// FilePlanLoader implements ports.PlanLoader using a YAML file.
type FilePlanLoader struct {
	Filename string
}

// Load reads the plan from the given working directory.
func (l *FilePlanLoader) Load(cwd string) (*domain.Plan, error) {
	name := l.Filename
	if name == "" {
		name = DefaultFilename
	}
	return Load(filepath.Join(cwd, name))
}

// Load reads a plan file from the given path.
func Load(path string) (*domain.Plan, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read plan file")
	}

	var file Planfile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, "failed to parse plan file")
	}

	plan := &domain.Plan{
		Vars: file.Vars,
		Settings: domain.Settings{
			Jobs:      file.Settings.Jobs,
			KeepGoing: file.Settings.KeepGoing,
			CacheDir:  file.Settings.Cache,
		},
	}

	// YAML maps have no order; sort names so the plan is deterministic for
	// a given file regardless of decoding order.
	names := make([]string, 0, len(file.Targets))
	for name := range file.Targets {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		dto := file.Targets[name]
		trigger := domain.Trigger(dto.Trigger)
		if trigger != "" && !trigger.Valid() {
			return nil, zerr.With(zerr.With(domain.ErrInvalidTrigger, "node", name), "trigger", dto.Trigger)
		}
		plan.Targets = append(plan.Targets, domain.TargetSpec{
			Name:    name,
			Command: dto.Cmd,
			Inputs:  dto.Inputs,
			Outputs: dto.Outputs,
			Trigger: trigger,
		})
	}

	return plan, nil
}
