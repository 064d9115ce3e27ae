package config

// Planfile represents the structure of the kiln.yaml plan file.
type Planfile struct {
	Version  string               `yaml:"version"`
	Settings SettingsDTO          `yaml:"settings"`
	Vars     map[string]string    `yaml:"vars"`
	Targets  map[string]TargetDTO `yaml:"targets"`
}

// SettingsDTO carries run configuration from the plan file.
type SettingsDTO struct {
	Jobs      int    `yaml:"jobs"`
	KeepGoing bool   `yaml:"keepGoing"`
	Cache     string `yaml:"cache"`
}

// TargetDTO represents a target declaration in the plan file.
type TargetDTO struct {
	Cmd     string   `yaml:"cmd"`
	Inputs  []string `yaml:"inputs"`
	Outputs []string `yaml:"outputs"`
	Trigger string   `yaml:"trigger"`
}
