package keys

import "strings"

// Combo is a key combination resolved to codes.
// A Combo built from an unknown key name can never match.
type Combo struct {
	codes     []Code
	reachable bool
	label     string
}

// Resolve builds a Combo from key names such as ["Control", "Meta"].
// An empty list or any unknown name yields an unreachable Combo.
func Resolve(names []string) Combo {
	c := Combo{label: strings.Join(names, "+")}
	if len(names) == 0 {
		return c
	}
	seen := make(map[Code]bool, len(names))
	for _, n := range names {
		code, ok := Lookup(n)
		if !ok {
			return Combo{label: c.label}
		}
		if !seen[code] {
			seen[code] = true
			c.codes = append(c.codes, code)
		}
	}
	c.reachable = true
	return c
}

// Reachable reports whether every key name resolved.
func (c Combo) Reachable() bool { return c.reachable }

// Codes returns the resolved codes.
func (c Combo) Codes() []Code { return append([]Code(nil), c.codes...) }

func (c Combo) String() string { return c.label }

// Matches reports whether every key of c is held in pressed.
// Extra pressed keys do not prevent a match.
func Matches(pressed Set, c Combo) bool {
	if !c.reachable {
		return false
	}
	for _, code := range c.codes {
		if !pressed.Has(code) {
			return false
		}
	}
	return true
}
