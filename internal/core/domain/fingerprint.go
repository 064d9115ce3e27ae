package domain

import "time"

// Fingerprint is the persisted record of a node's last successful build.
//
// A record exists iff the node has been built successfully since the cache
// was last cleared; absence means "never built" and therefore outdated.
// Records are written all-or-nothing by the build executor.
type Fingerprint struct {
	Name string `json:"name"`

	// CommandHash is the long hash of the command text. Empty for imports.
	CommandHash string `json:"command_hash,omitzero"`

	// DependencyHash is the long hash of the ordered concatenation of
	// dependency fingerprints at the time of the build.
	DependencyHash string `json:"dependency_hash,omitzero"`

	// OutputHash fingerprints what the node produced: the combined hash of
	// declared output files when the node declares any, otherwise the hash
	// of the produced value. Dependents record this value inside their own
	// DependencyHash.
	OutputHash string `json:"output_hash,omitzero"`

	// ValueHash addresses the stored value blob in the cache.
	ValueHash string `json:"value_hash,omitzero"`

	BuiltAt time.Time `json:"built_at,omitzero"`
}
