// Package domain contains the core domain models for the dependency graph
// and the fingerprint cache.
package domain

// NodeKind distinguishes declared build targets from referenced imports.
type NodeKind string

const (
	// KindTarget is a node the user explicitly declared and wants built.
	KindTarget NodeKind = "target"
	// KindImport is a value referenced by a command but not declared as a
	// target. Imports are snapshotted from their definition, never executed.
	KindImport NodeKind = "import"
)

// Trigger is the per-node policy governing which changes mark it outdated.
type Trigger string

const (
	// TriggerAny reacts to command, dependency, and file changes. Default.
	TriggerAny Trigger = "any"
	// TriggerAlways marks the node outdated on every run.
	TriggerAlways Trigger = "always"
	// TriggerCommand reacts only to command text changes.
	TriggerCommand Trigger = "command"
	// TriggerDepends reacts only to dependency fingerprint changes.
	TriggerDepends Trigger = "depends"
	// TriggerFile reacts only to declared output file changes.
	TriggerFile Trigger = "file"
)

// Valid reports whether t is a recognized trigger policy.
func (t Trigger) Valid() bool {
	switch t {
	case TriggerAny, TriggerAlways, TriggerCommand, TriggerDepends, TriggerFile:
		return true
	}
	return false
}

// Node is a vertex in the dependency graph.
//
// Targets carry the command that produces them; imports carry a snapshot of
// their definition taken when the graph was built. Both share one namespace.
type Node struct {
	Name    InternedString
	Kind    NodeKind
	Command string

	// Inputs and Outputs are the file paths explicitly declared by the
	// user, canonicalized (sorted, deduplicated). They are never inferred.
	Inputs  []InternedString
	Outputs []InternedString

	// Dependencies is the canonical set of node names this node's command
	// or definition references, as reported by the symbol extractor plus
	// any file-edge producers.
	Dependencies []InternedString

	Trigger Trigger

	// Definition holds the snapshotted value for imports; nil for targets.
	Definition []byte
}

// IsTarget reports whether the node is a declared target.
func (n *Node) IsTarget() bool {
	return n.Kind == KindTarget
}
