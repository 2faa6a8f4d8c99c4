// Package keys defines the set of key identifiers a rotation may use.
package keys

import (
	"fmt"
	"strings"
)

// Category groups key identifiers for display in the configuration form
type Category struct {
	Name string   `json:"name"`
	Keys []string `json:"keys"`
}

var categories = []Category{
	{Name: "Letter Keys", Keys: letters()},
	{Name: "Number Keys", Keys: digits()},
	{Name: "Function Keys", Keys: functionKeys()},
	{Name: "Special Keys", Keys: []string{
		"space", "tab", "shift", "ctrl", "alt", "enter", "backspace",
		"delete", "insert", "home", "end", "pageup", "pagedown",
		"up", "down", "left", "right", "esc",
	}},
	{Name: "Other Keys", Keys: []string{"½", "¾", "`", "-", "=", "[", "]", "\\", ";", "'", ",", ".", "/"}},
}

var valid = buildSet()

// aliases maps names reported by hook backends to the canonical identifier
var aliases = map[string]string{
	"escape":    "esc",
	"return":    "enter",
	"control":   "ctrl",
	"lctrl":     "ctrl",
	"rctrl":     "ctrl",
	"lshift":    "shift",
	"rshift":    "shift",
	"lalt":      "alt",
	"ralt":      "alt",
	"page up":   "pageup",
	"page down": "pagedown",
	"pgup":      "pageup",
	"pgdn":      "pagedown",
	"del":       "delete",
	"ins":       "insert",
}

func letters() []string {
	out := make([]string, 0, 26)
	for c := 'a'; c <= 'z'; c++ {
		out = append(out, string(c))
	}
	return out
}

func digits() []string {
	out := make([]string, 0, 10)
	for c := '0'; c <= '9'; c++ {
		out = append(out, string(c))
	}
	return out
}

func functionKeys() []string {
	out := make([]string, 0, 12)
	for i := 1; i <= 12; i++ {
		out = append(out, fmt.Sprintf("f%d", i))
	}
	return out
}

func buildSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, c := range categories {
		for _, k := range c.Keys {
			set[k] = struct{}{}
		}
	}
	return set
}

// Normalize lower-cases and trims a key identifier and resolves known aliases.
func Normalize(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	if canonical, ok := aliases[k]; ok {
		return canonical
	}
	return k
}

// IsValid reports whether key belongs to the validation set, ignoring case.
func IsValid(key string) bool {
	_, ok := valid[Normalize(key)]
	return ok
}

// Invalid returns the entries of list that are not valid key identifiers, in order.
func Invalid(list []string) []string {
	var out []string
	for _, k := range list {
		if !IsValid(k) {
			out = append(out, k)
		}
	}
	return out
}

// Categories returns a copy of the validation set grouped by category
func Categories() []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		out[i] = Category{Name: c.Name, Keys: append([]string(nil), c.Keys...)}
	}
	return out
}

// Count returns the number of distinct valid key identifiers
func Count() int {
	return len(valid)
}
