package core

// ProjectKind identifies the flavor of a model repository. It is supplied by
// the caller and used only to gate kind-specific rules.
type ProjectKind string

// Known project kinds.
const (
	KindDbt     ProjectKind = "dbt"
	KindPlain   ProjectKind = "plain"
	KindUnknown ProjectKind = "unknown"
)

// String returns the kind as a string.
func (k ProjectKind) String() string {
	if k == "" {
		return string(KindUnknown)
	}
	return string(k)
}
