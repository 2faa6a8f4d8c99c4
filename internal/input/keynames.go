package input

import (
	"strconv"
	"unicode"

	"oneclick/internal/keys"
)

// charUndefined is the keychar the hook reports for keys that type nothing
const charUndefined = 0xFFFF

// KeyName resolves a hook event to a key identifier. A printable keychar
// wins when it names a valid key; otherwise the rawcode is looked up in the
// table for goos. It returns "" for keys outside the validation set.
func KeyName(goos string, rawcode uint16, keychar rune) string {
	if keychar != 0 && keychar != charUndefined && unicode.IsPrint(keychar) {
		if name := keys.Normalize(string(keychar)); keys.IsValid(name) {
			return name
		}
	}

	var table map[uint16]string
	switch goos {
	case "darwin":
		table = darwinKeys
	case "windows":
		table = windowsKeys
	default:
		table = x11Keys
	}
	return table[rawcode]
}

// darwinKeys maps macOS virtual keycodes (kVK_*) to key identifiers
var darwinKeys = map[uint16]string{
	0: "a", 11: "b", 8: "c", 2: "d", 14: "e", 3: "f", 5: "g", 4: "h", 34: "i",
	38: "j", 40: "k", 37: "l", 46: "m", 45: "n", 31: "o", 35: "p", 12: "q",
	15: "r", 1: "s", 17: "t", 32: "u", 9: "v", 13: "w", 7: "x", 16: "y", 6: "z",

	29: "0", 18: "1", 19: "2", 20: "3", 21: "4", 23: "5", 22: "6", 26: "7", 28: "8", 25: "9",

	122: "f1", 120: "f2", 99: "f3", 118: "f4", 96: "f5", 97: "f6",
	98: "f7", 100: "f8", 101: "f9", 109: "f10", 103: "f11", 111: "f12",

	49: "space", 48: "tab", 56: "shift", 60: "shift", 59: "ctrl", 62: "ctrl",
	58: "alt", 61: "alt", 36: "enter", 76: "enter", 51: "backspace",
	117: "delete", 114: "insert", 115: "home", 119: "end", 116: "pageup",
	121: "pagedown", 126: "up", 125: "down", 123: "left", 124: "right", 53: "esc",

	50: "`", 27: "-", 24: "=", 33: "[", 30: "]", 42: "\\", 41: ";", 39: "'",
	43: ",", 47: ".", 44: "/",
}

// windowsKeys maps Windows virtual-key codes (VK_*) to key identifiers
var windowsKeys = buildTable(map[uint16]string{
	0x20: "space", 0x09: "tab", 0x10: "shift", 0xA0: "shift", 0xA1: "shift",
	0x11: "ctrl", 0xA2: "ctrl", 0xA3: "ctrl", 0x12: "alt", 0xA4: "alt", 0xA5: "alt",
	0x0D: "enter", 0x08: "backspace", 0x2E: "delete", 0x2D: "insert",
	0x24: "home", 0x23: "end", 0x21: "pageup", 0x22: "pagedown",
	0x26: "up", 0x28: "down", 0x25: "left", 0x27: "right", 0x1B: "esc",

	0xC0: "`", 0xBD: "-", 0xBB: "=", 0xDB: "[", 0xDD: "]", 0xDC: "\\",
	0xBA: ";", 0xDE: "'", 0xBC: ",", 0xBE: ".", 0xBF: "/",
}, 0x41, 0x30, 0x70)

// x11Keys maps X keysyms to key identifiers. Shifted letters report the
// uppercase keysym.
var x11Keys = withUppercase(buildTable(map[uint16]string{
	0x0020: "space", 0xff09: "tab", 0xffe1: "shift", 0xffe2: "shift",
	0xffe3: "ctrl", 0xffe4: "ctrl", 0xffe9: "alt", 0xffea: "alt",
	0xff0d: "enter", 0xff8d: "enter", 0xff08: "backspace", 0xffff: "delete",
	0xff63: "insert", 0xff50: "home", 0xff57: "end", 0xff55: "pageup",
	0xff56: "pagedown", 0xff52: "up", 0xff54: "down", 0xff51: "left",
	0xff53: "right", 0xff1b: "esc",

	0x60: "`", 0x2d: "-", 0x3d: "=", 0x5b: "[", 0x5d: "]", 0x5c: "\\",
	0x3b: ";", 0x27: "'", 0x2c: ",", 0x2e: ".", 0x2f: "/", 0xbd: "½", 0xbe: "¾",
}, 0x61, 0x30, 0xffbe))

func withUppercase(table map[uint16]string) map[uint16]string {
	for i := uint16(0); i < 26; i++ {
		table[0x41+i] = string(rune('a' + i))
	}
	return table
}

// buildTable adds the contiguous letter, digit and f1-f12 ranges to named
func buildTable(named map[uint16]string, letterA, digit0, f1 uint16) map[uint16]string {
	for i := uint16(0); i < 26; i++ {
		named[letterA+i] = string(rune('a' + i))
	}
	for i := uint16(0); i < 10; i++ {
		named[digit0+i] = string(rune('0' + i))
	}
	for i := uint16(0); i < 12; i++ {
		named[f1+i] = "f" + strconv.Itoa(int(i)+1)
	}
	return named
}
