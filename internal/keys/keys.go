// Package keys maps key names to the virtual key codes reported by the
// global keyboard hook and answers whether a key combination is held.
package keys

import (
	"strings"

	"github.com/vcaesar/keycode"
)

// Code is a libuiohook virtual key code.
type Code uint16

// Virtual key codes as delivered by libuiohook (VC_* constants).
const (
	Escape    Code = 0x0001
	Backspace Code = 0x000E
	Tab       Code = 0x000F
	Enter     Code = 0x001C
	Space     Code = 0x0039

	ControlLeft  Code = 0x001D
	ControlRight Code = 0x0E1D
	ShiftLeft    Code = 0x002A
	ShiftRight   Code = 0x0036
	AltLeft      Code = 0x0038
	AltRight     Code = 0x0E38
	MetaLeft     Code = 0x0E5B
	MetaRight    Code = 0x0E5C
)

// aliases maps accepted names onto entries of keycode.Keycode, the table
// gohook matches events against.
var aliases = map[string]string{
	// The generic modifier names resolve to the left-hand key.
	"controlleft": "ctrl",
	"shiftleft":   "shift",
	"shiftright":  "rshift",
	"altleft":     "alt",
	"altright":    "ralt",
	"meta":        "cmd",
	"super":       "cmd",
	"win":         "cmd",
	"metaleft":    "cmd",
	"metaright":   "rcmd",
	"escape":      "esc",
	"return":      "enter",
}

// overrides covers keys keycode.Keycode lacks, and F11/F12, which it maps to
// the libuiohook NumLock and ScrollLock codes.
var overrides = map[string]Code{
	"controlright": ControlRight,
	"backspace":    Backspace,
	"f11":          0x0057,
	"f12":          0x0058,
}

var names = buildNames()

func buildNames() map[string]Code {
	m := make(map[string]Code, len(keycode.Keycode)+len(aliases)+len(overrides))
	for name, c := range keycode.Keycode {
		m[name] = Code(c)
	}
	for alias, name := range aliases {
		if c, ok := keycode.Keycode[name]; ok {
			m[alias] = Code(c)
		}
	}
	for name, c := range overrides {
		m[name] = c
	}
	// keycode names Backspace "delete"; the forward Delete key is not mapped.
	delete(m, "delete")
	return m
}

// Lookup returns the code for a key name. Names are case-insensitive.
func Lookup(name string) (Code, bool) {
	c, ok := names[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Set is the set of keys currently held down.
type Set map[Code]struct{}

// NewSet returns an empty Set.
func NewSet() Set { return make(Set) }

func (s Set) Add(c Code)    { s[c] = struct{}{} }
func (s Set) Remove(c Code) { delete(s, c) }

func (s Set) Has(c Code) bool {
	_, ok := s[c]
	return ok
}

// Clear removes every key from the set.
func (s Set) Clear() {
	for c := range s {
		delete(s, c)
	}
}
