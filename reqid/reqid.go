// Package reqid implements the typed request/channel identity tokens
// from spec.md §3/§6: opaque identifiers that cross coroutine and
// runner boundaries, carried by yields, fetcher completions, and
// HVML-run URIs.
package reqid

import "fmt"

// Type is the request-identity kind, per spec.md §3.
type Type int

const (
	Elements Type = iota
	Crtn
	Chan
	Rdr
)

func (t Type) String() string {
	switch t {
	case Elements:
		return "ELEMENTS"
	case Crtn:
		return "CRTN"
	case Chan:
		return "CHAN"
	case Rdr:
		return "RDR"
	default:
		return "UNKNOWN"
	}
}

// ID is a request identity: {type, runner-id, coroutine-id,
// resource-name}. In Match, an empty RunnerID, CoroutineID or
// ResourceName in the pattern acts as a wildcard (Type must always
// match); Equal requires all four components to match exactly.
type ID struct {
	Type         Type
	RunnerID     string
	CoroutineID  string
	ResourceName string
}

// New builds a fully-specified request identity.
func New(t Type, runnerID, coroutineID, resourceName string) ID {
	return ID{Type: t, RunnerID: runnerID, CoroutineID: coroutineID, ResourceName: resourceName}
}

// Equal reports whether two request ids name the same resource: all
// four components must match, per spec.md §3.
func (id ID) Equal(other ID) bool {
	return id.Type == other.Type &&
		id.RunnerID == other.RunnerID &&
		id.CoroutineID == other.CoroutineID &&
		id.ResourceName == other.ResourceName
}

// Match is the weaker relation spec.md §3 defines alongside Equal: an
// empty string field of pattern is a wildcard for that component. The
// receiver's empty fields are not wildcards, and Type is always compared.
func (id ID) Match(pattern ID) bool {
	if pattern.Type != id.Type {
		return false
	}
	if pattern.RunnerID != "" && pattern.RunnerID != id.RunnerID {
		return false
	}
	if pattern.CoroutineID != "" && pattern.CoroutineID != id.CoroutineID {
		return false
	}
	if pattern.ResourceName != "" && pattern.ResourceName != id.ResourceName {
		return false
	}
	return true
}

// String renders the id for logs and the hvml+run:// URI grammar's
// resource path segment.
func (id ID) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", id.Type, id.RunnerID, id.CoroutineID, id.ResourceName)
}

// IsZero reports whether id is the empty identity (used as "no
// wait_request_id" per the coroutine.STOPPED invariant).
func (id ID) IsZero() bool {
	return id == ID{}
}
