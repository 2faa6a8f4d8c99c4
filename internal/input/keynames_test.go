package input

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"oneclick/internal/keys"
)

func TestKeyName(t *testing.T) {
	tests := []struct {
		goos    string
		rawcode uint16
		keychar rune
		want    string
	}{
		// macOS virtual keycodes
		{"darwin", 122, charUndefined, "f1"},
		{"darwin", 103, charUndefined, "f11"},
		{"darwin", 111, charUndefined, "f12"},
		{"darwin", 0, charUndefined, "a"},
		{"darwin", 49, charUndefined, "space"},
		{"darwin", 53, charUndefined, "esc"},
		{"darwin", 29, charUndefined, "0"},

		// X keysyms
		{"linux", 0x61, charUndefined, "a"},
		{"linux", 0x41, charUndefined, "a"},
		{"linux", 0xffbe, charUndefined, "f1"},
		{"linux", 0xffc7, charUndefined, "f10"},
		{"linux", 0xffc9, charUndefined, "f12"},
		{"linux", 0xff0d, charUndefined, "enter"},
		{"linux", 0x2f, charUndefined, "/"},
		{"freebsd", 0xff1b, charUndefined, "esc"},

		// Windows virtual-key codes
		{"windows", 0x70, charUndefined, "f1"},
		{"windows", 0x7B, charUndefined, "f12"},
		{"windows", 0x41, charUndefined, "a"},
		{"windows", 0x39, charUndefined, "9"},
		{"windows", 0xA2, charUndefined, "ctrl"},
		{"windows", 0xBF, charUndefined, "/"},

		// a printable keychar wins over the rawcode
		{"darwin", 122, 'q', "q"},
		{"linux", 0, 'S', "s"},
		// a keychar outside the key set falls back to the rawcode
		{"darwin", 18, '!', "1"},
		{"windows", 0x31, 0, "1"},

		// unknown codes
		{"darwin", 200, charUndefined, ""},
		{"linux", 0xff8a, charUndefined, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, KeyName(tt.goos, tt.rawcode, tt.keychar),
			"%s rawcode=%#x keychar=%q", tt.goos, tt.rawcode, tt.keychar)
	}
}

func TestKeyTablesOnlyNameValidKeys(t *testing.T) {
	for goos, table := range map[string]map[uint16]string{"darwin": darwinKeys, "windows": windowsKeys, "linux": x11Keys} {
		for code, name := range table {
			assert.True(t, keys.IsValid(name), "%s: %#x maps to %q", goos, code, name)
		}
	}
}

func TestKeyTablesCoverFunctionKeys(t *testing.T) {
	for goos, table := range map[string]map[uint16]string{"darwin": darwinKeys, "windows": windowsKeys, "linux": x11Keys} {
		seen := map[string]bool{}
		for _, name := range table {
			seen[name] = true
		}
		for i := 1; i <= 12; i++ {
			assert.True(t, seen[fmt.Sprintf("f%d", i)], "%s lacks f%d", goos, i)
		}
	}
}
