package domain

import "go.trai.ch/zerr"

var (
	// ErrNodeAlreadyExists is returned when two declarations share a name.
	ErrNodeAlreadyExists = zerr.New("node already exists")

	// ErrMissingDependency is returned when a command references a name
	// that is neither a declared target nor a defined import.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when the dependency graph has a
	// directed cycle. Fatal before any execution.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrAmbiguousOutput is returned when two targets declare the same
	// output path. Fatal at graph-build time.
	ErrAmbiguousOutput = zerr.New("ambiguous output path")

	// ErrExtraction is returned when a dependency extractor fails to
	// analyze a command or document.
	ErrExtraction = zerr.New("dependency extraction failed")

	// ErrBuildFailed is returned when a node's command fails during
	// execution. Recorded per node; the cache is left untouched.
	ErrBuildFailed = zerr.New("build failed")

	// ErrOutputMissing is returned when a command succeeds but a declared
	// output file was not produced.
	ErrOutputMissing = zerr.New("declared output not produced")

	// ErrDependencyFailed marks a node that was never attempted because a
	// transitive dependency failed under the keep-going policy.
	ErrDependencyFailed = zerr.New("upstream dependency failed")

	// ErrCacheIO is returned on any backend read/write failure. Fatal for
	// the run; fingerprint integrity cannot be guaranteed past it.
	ErrCacheIO = zerr.New("cache backend failure")

	// ErrKeyNotFound is returned by cache backends for absent keys.
	ErrKeyNotFound = zerr.New("key not found")

	// ErrNotCached is returned when reading a node that has no record.
	ErrNotCached = zerr.New("node not cached")

	// ErrNodeNotFound is returned when a requested node is not in the graph.
	ErrNodeNotFound = zerr.New("node not found")

	// ErrInvalidTrigger is returned for an unrecognized trigger policy.
	ErrInvalidTrigger = zerr.New("invalid trigger")
)
