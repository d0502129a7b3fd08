// Package diet defines the dietary classification shared by restaurants and
// food items.
package diet

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is stored as an integer code
type Type int

const (
	Veg    Type = 1
	NonVeg Type = 2
	Vegan  Type = 3
)

// All lists every valid diet type in code order
var All = []Type{Veg, NonVeg, Vegan}

var names = map[Type]string{
	Veg:    "veg",
	NonVeg: "non-veg",
	Vegan:  "vegan",
}

var aliases = map[string]Type{
	"veg":            Veg,
	"vegetarian":     Veg,
	"non-veg":        NonVeg,
	"nonveg":         NonVeg,
	"non-vegetarian": NonVeg,
	"vegan":          Vegan,
}

// Valid reports whether t is one of the known codes
func (t Type) Valid() bool {
	_, ok := names[t]
	return ok
}

func (t Type) String() string {
	if name, ok := names[t]; ok {
		return name
	}
	return "unknown(" + strconv.Itoa(int(t)) + ")"
}

// Label is the human readable name
func (t Type) Label() string {
	switch t {
	case Veg:
		return "Vegetarian"
	case NonVeg:
		return "Non-Vegetarian"
	case Vegan:
		return "Vegan"
	}
	return t.String()
}

// Parse accepts a numeric code or a name such as "veg" or "non-veg"
func Parse(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if code, err := strconv.Atoi(s); err == nil {
		t := Type(code)
		if !t.Valid() {
			return 0, fmt.Errorf("unknown diet type %d", code)
		}
		return t, nil
	}
	if t, ok := aliases[s]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("unknown diet type %q", s)
}

// MarshalText renders the canonical name in JSON; the zero value is empty
func (t Type) MarshalText() ([]byte, error) {
	if t == 0 {
		return []byte{}, nil
	}
	if !t.Valid() {
		return nil, fmt.Errorf("invalid diet type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText accepts anything Parse accepts; empty input is the zero value
func (t *Type) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*t = 0
		return nil
	}
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UnmarshalJSON accepts both the numeric code and a quoted name
func (t *Type) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	return t.UnmarshalText([]byte(strings.Trim(s, `"`)))
}
