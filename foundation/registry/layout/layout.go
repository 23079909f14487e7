// Package layout declares the physical storage layout of the registry and
// decides whether a new version of the layout can be installed on top of the
// state written by an older one.
//
// A layout is an ordered list of slots. A slot is an independently addressed
// key space identified by a one byte prefix, holding records of a single
// shape. Old slots are never reordered, resized or removed. A new version
// may only append slots.
package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrIncompatible is returned when a layout can't be installed over the
// state written by the active layout.
var ErrIncompatible = errors.New("storage layout incompatible")

// =============================================================================

// Field describes one field of a slot record in its physical position.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Slot is an independently addressed mapping inside the store.
type Slot struct {
	Name   string  `json:"name"`
	Prefix byte    `json:"prefix"`
	Fields []Field `json:"fields,omitempty"`
}

// NewSlot constructs a slot whose records have the shape of the specified
// record value. A nil record declares a slot of raw values.
func NewSlot(name string, prefix byte, record any) Slot {
	return Slot{
		Name:   name,
		Prefix: prefix,
		Fields: Fields(record),
	}
}

// Equal reports whether two slots occupy the same physical layout.
func (s Slot) Equal(o Slot) bool {
	if s.Name != o.Name || s.Prefix != o.Prefix || len(s.Fields) != len(o.Fields) {
		return false
	}

	for i := range s.Fields {
		if s.Fields[i] != o.Fields[i] {
			return false
		}
	}

	return true
}

// String implements the fmt.Stringer interface for logging.
func (s Slot) String() string {
	fields := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = f.Name + ":" + f.Type
	}

	return fmt.Sprintf("%s[%c]{%s}", s.Name, s.Prefix, strings.Join(fields, ","))
}

// =============================================================================

// Layout is a versioned, ordered set of slots.
type Layout struct {
	Version uint16 `json:"version"`
	Slots   []Slot `json:"slots"`
}

// New constructs a layout for the specified version and validates it.
func New(version uint16, slots ...Slot) (Layout, error) {
	l := Layout{
		Version: version,
		Slots:   slots,
	}

	if err := l.Validate(); err != nil {
		return Layout{}, err
	}

	return l, nil
}

// Extend returns a new layout for the specified version with the slots of
// this layout followed by the new slots. The receiver is not modified.
func (l Layout) Extend(version uint16, slots ...Slot) (Layout, error) {
	all := make([]Slot, 0, len(l.Slots)+len(slots))
	all = append(all, l.Slots...)
	all = append(all, slots...)

	return New(version, all...)
}

// Validate checks the layout is internally consistent.
func (l Layout) Validate() error {
	if l.Version == 0 {
		return errors.New("layout version must be greater than zero")
	}

	if len(l.Slots) == 0 {
		return errors.New("layout has no slots")
	}

	names := make(map[string]bool, len(l.Slots))
	prefixes := make(map[byte]string, len(l.Slots))
	for _, s := range l.Slots {
		if s.Name == "" {
			return errors.New("slot name is empty")
		}

		if names[s.Name] {
			return fmt.Errorf("slot %q declared twice", s.Name)
		}
		names[s.Name] = true

		if other, exists := prefixes[s.Prefix]; exists {
			return fmt.Errorf("slot %q reuses prefix %q of slot %q", s.Name, s.Prefix, other)
		}
		prefixes[s.Prefix] = s.Name
	}

	return nil
}

// Slot returns the slot declared with the specified name.
func (l Layout) Slot(name string) (Slot, bool) {
	for _, s := range l.Slots {
		if s.Name == name {
			return s, true
		}
	}

	return Slot{}, false
}

// Equal reports whether two layouts are the same version with the same
// physical slots.
func (l Layout) Equal(o Layout) bool {
	if l.Version != o.Version || len(l.Slots) != len(o.Slots) {
		return false
	}

	for i := range l.Slots {
		if !l.Slots[i].Equal(o.Slots[i]) {
			return false
		}
	}

	return true
}

// Encode returns the descriptor that is persisted next to the state.
func (l Layout) Encode() ([]byte, error) {
	return json.Marshal(l)
}

// Decode parses a persisted layout descriptor.
func Decode(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}

	return l, nil
}

// =============================================================================

// Check validates that next can be installed over state written with prev.
// Every slot of prev must appear in next at the same position with the same
// name, prefix and field list. Any other change is rejected.
func Check(prev Layout, next Layout) error {
	if next.Version <= prev.Version {
		return fmt.Errorf("%w: version %d does not follow version %d", ErrIncompatible, next.Version, prev.Version)
	}

	if err := next.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrIncompatible, err)
	}

	if len(next.Slots) < len(prev.Slots) {
		return fmt.Errorf("%w: version %d declares %d slots, version %d has %d", ErrIncompatible, next.Version, len(next.Slots), prev.Version, len(prev.Slots))
	}

	for i, ps := range prev.Slots {
		ns := next.Slots[i]

		if ns.Name != ps.Name {
			return fmt.Errorf("%w: slot %d is %q, was %q", ErrIncompatible, i, ns.Name, ps.Name)
		}

		if ns.Prefix != ps.Prefix {
			return fmt.Errorf("%w: slot %q prefix %q, was %q", ErrIncompatible, ns.Name, ns.Prefix, ps.Prefix)
		}

		if err := checkFields(ps, ns); err != nil {
			return err
		}
	}

	return nil
}

// checkFields reports the first field that moved, changed type, or
// appeared or disappeared between two declarations of a slot.
func checkFields(prev Slot, next Slot) error {
	for i, pf := range prev.Fields {
		if i >= len(next.Fields) {
			return fmt.Errorf("%w: slot %q field %q removed", ErrIncompatible, prev.Name, pf.Name)
		}

		nf := next.Fields[i]
		if nf.Name != pf.Name {
			return fmt.Errorf("%w: slot %q field %d is %q, was %q", ErrIncompatible, prev.Name, i, nf.Name, pf.Name)
		}

		if nf.Type != pf.Type {
			return fmt.Errorf("%w: slot %q field %q type %s, was %s", ErrIncompatible, prev.Name, nf.Name, nf.Type, pf.Type)
		}
	}

	if len(next.Fields) > len(prev.Fields) {
		nf := next.Fields[len(prev.Fields)]
		return fmt.Errorf("%w: slot %q field %q added to an existing record", ErrIncompatible, prev.Name, nf.Name)
	}

	return nil
}

// =============================================================================

// Fields returns the physical field list of a record value. Records are
// encoded positionally, so the order of the exported fields is the order
// on disk. Fields tagged `rlp:"-"` are not encoded and are skipped.
func Fields(record any) []Field {
	if record == nil {
		return nil
	}

	t := reflect.TypeOf(record)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return []Field{{Name: "value", Type: typeName(t)}}
	}

	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Tag.Get("rlp") == "-" {
			continue
		}

		fields = append(fields, Field{Name: sf.Name, Type: typeName(sf.Type)})
	}

	return fields
}

// typeName describes a type by its encoded shape rather than its Go name so
// renaming a Go type doesn't change the layout.
func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return fmt.Sprintf("bytes%d", t.Len())
		}
		return fmt.Sprintf("[%d]%s", t.Len(), typeName(t.Elem()))

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return "bytes"
		}
		return "[]" + typeName(t.Elem())

	case reflect.Pointer:
		return "*" + typeName(t.Elem())

	case reflect.Struct:
		fields := make([]string, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.IsExported() || sf.Tag.Get("rlp") == "-" {
				continue
			}
			fields = append(fields, sf.Name+" "+typeName(sf.Type))
		}
		return "struct{" + strings.Join(fields, "; ") + "}"

	default:
		return t.Kind().String()
	}
}
