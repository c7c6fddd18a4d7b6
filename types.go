package skema

// DefaultMaxDepth bounds how deeply arrays and objects may nest during a
// parse when the context carries no explicit limit.
const DefaultMaxDepth = 512

// ParseOpt bundles options for ParseFrom.
type ParseOpt struct {
	// MaxDepth overrides DefaultMaxDepth when positive.
	MaxDepth int
	// MaxBytes caps the number of bytes read from a reader-backed Source.
	// Zero means unlimited.
	MaxBytes int64
	// RejectDuplicateKeys fails JSON input in which an object repeats a
	// key. YAML input always rejects duplicates.
	RejectDuplicateKeys bool
}
