package optik

import (
	"log/slog"
	"reflect"
)

// CapabilityHolder is satisfied by Class and Property, the two descriptor
// kinds that carry capability attachments. It cannot be implemented outside
// this package.
type CapabilityHolder interface {
	capability(id TypeID) (any, bool)
}

// CapabilityOf returns the capability of exact type T attached to h. Lookup
// matches the attachment's dynamic type; no interface or embedding
// conversions are applied. The second result is false when h is nil or no T
// is attached.
func CapabilityOf[T any](h CapabilityHolder) (T, bool) {
	var zero T
	if h == nil {
		return zero, false
	}
	v, ok := h.capability(TypeOf[T]())
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// capabilitySet stores at most one attachment per dynamic type. Attachments
// happen during declaration; afterwards the set is read-only, so lookups
// need no locking.
type capabilitySet struct {
	caps map[TypeID]any
}

// add records v keyed by its dynamic type. The first attachment of a type
// wins; duplicates are logged and discarded. on names the carrying
// descriptor for the log entry.
func (s *capabilitySet) add(v any, on string, logger *slog.Logger) bool {
	if v == nil {
		panic("optik: nil capability on " + on)
	}
	id := typeIDFor(reflect.TypeOf(v))
	if _, dup := s.caps[id]; dup {
		logger.Warn("duplicate capability registration, ignoring",
			slog.String("capability", id.String()),
			slog.String("on", on))
		return false
	}
	if s.caps == nil {
		s.caps = make(map[TypeID]any)
	}
	s.caps[id] = v
	return true
}

func (s *capabilitySet) get(id TypeID) (any, bool) {
	v, ok := s.caps[id]
	return v, ok
}
