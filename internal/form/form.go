package form

import (
	"fmt"
	"strings"
)

// Entry is a named product or box with its raw "LxWxH" dimensions text.
type Entry struct {
	Name       string `json:"name"`
	Dimensions string `json:"dimensions"`
}

// List identifies one of the two entry sequences held by a State.
type List string

const (
	Products List = "products"
	Boxes    List = "boxes"
)

// Field identifies an editable field of an Entry.
type Field string

const (
	FieldName       Field = "name"
	FieldDimensions Field = "dimensions"
)

// ParseList converts text into a List.
func ParseList(raw string) (List, error) {
	switch l := List(strings.ToLower(strings.TrimSpace(raw))); l {
	case Products, Boxes:
		return l, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownList, raw)
	}
}

// ParseField converts text into a Field.
func ParseField(raw string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(raw))); f {
	case FieldName, FieldDimensions:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, raw)
	}
}

// State is an immutable snapshot of the form. Every update returns a new
// State and leaves the receiver untouched.
type State struct {
	products []Entry
	boxes    []Entry
}

// New returns the initial form: one blank product and one blank box.
func New() State {
	return State{
		products: []Entry{{}},
		boxes:    []Entry{{}},
	}
}

// FromEntries builds a State holding copies of the provided entries.
func FromEntries(products, boxes []Entry) State {
	return State{
		products: cloneEntries(products),
		boxes:    cloneEntries(boxes),
	}
}

// Products returns a copy of the product entries in input order.
func (s State) Products() []Entry {
	return cloneEntries(s.products)
}

// Boxes returns a copy of the box entries in input order.
func (s State) Boxes() []Entry {
	return cloneEntries(s.boxes)
}

// Entries returns a copy of the requested list.
func (s State) Entries(list List) []Entry {
	if list == Boxes {
		return s.Boxes()
	}
	return s.Products()
}

// AddProduct appends a blank product.
func (s State) AddProduct() State {
	return State{
		products: appendEntry(s.products, Entry{}),
		boxes:    s.boxes,
	}
}

// AddBox appends a blank box.
func (s State) AddBox() State {
	return State{
		products: s.products,
		boxes:    appendEntry(s.boxes, Entry{}),
	}
}

// SetField replaces one field of the entry at index in list. The value is
// stored as given.
func (s State) SetField(list List, index int, field Field, value string) (State, error) {
	var entries []Entry
	switch list {
	case Products:
		entries = s.products
	case Boxes:
		entries = s.boxes
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownList, list)
	}

	if index < 0 || index >= len(entries) {
		return s, fmt.Errorf("%w: %s[%d] (have %d)", ErrIndexOutOfRange, list, index, len(entries))
	}

	updated := cloneEntries(entries)
	switch field {
	case FieldName:
		updated[index].Name = value
	case FieldDimensions:
		updated[index].Dimensions = value
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	if list == Products {
		return State{products: updated, boxes: s.boxes}, nil
	}
	return State{products: s.products, boxes: updated}, nil
}

// appendEntry never writes into the backing array of src, so states sharing it
// stay unchanged.
func appendEntry(src []Entry, e Entry) []Entry {
	out := make([]Entry, len(src), len(src)+1)
	copy(out, src)
	return append(out, e)
}

func cloneEntries(src []Entry) []Entry {
	out := make([]Entry, len(src))
	copy(out, src)
	return out
}
