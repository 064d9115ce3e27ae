package domain

// TargetSpec is a single target declaration as supplied by the plan source,
// before extraction and graph construction.
type TargetSpec struct {
	Name    string
	Command string
	Inputs  []string
	Outputs []string
	Trigger Trigger
}

// Plan is the ordered collection of target declarations plus the import
// definitions (vars) they may reference.
type Plan struct {
	Targets  []TargetSpec
	Vars     map[string]string
	Settings Settings
}

// Settings carries run configuration declared alongside the plan.
type Settings struct {
	// Jobs bounds worker concurrency; 0 means "pick a default".
	Jobs int
	// KeepGoing switches the partial-failure policy from stop-on-error to
	// building all branches not downstream of a failure.
	KeepGoing bool
	// CacheDir is the cache location; empty means the default location.
	CacheDir string
}
