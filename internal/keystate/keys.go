package keystate

import (
	"fmt"
	"strings"
)

// Key identifies a physical key on both supported platforms.
type Key struct {
	Name string
	// VK is the Windows virtual-key code.
	VK uint16
	// Code is the Linux evdev key code.
	Code uint16
}

var letterCodes = map[byte]uint16{
	'Q': 16, 'W': 17, 'E': 18, 'R': 19, 'T': 20, 'Y': 21, 'U': 22, 'I': 23, 'O': 24, 'P': 25,
	'A': 30, 'S': 31, 'D': 32, 'F': 33, 'G': 34, 'H': 35, 'J': 36, 'K': 37, 'L': 38,
	'Z': 44, 'X': 45, 'C': 46, 'V': 47, 'B': 48, 'N': 49, 'M': 50,
}

var namedKeys = map[string]Key{
	"SPACE": {Name: "SPACE", VK: 0x20, Code: 57},
	"TAB":   {Name: "TAB", VK: 0x09, Code: 15},
	"SHIFT": {Name: "SHIFT", VK: 0x10, Code: 42},
	"CTRL":  {Name: "CTRL", VK: 0x11, Code: 29},
	"ALT":   {Name: "ALT", VK: 0x12, Code: 56},
}

// Parse resolves a key name such as "R", "5", "F9", or "SPACE". Names are
// case-insensitive.
func Parse(name string) (Key, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	switch {
	case upper == "":
		return Key{}, fmt.Errorf("key name is empty")
	case len(upper) == 1 && upper[0] >= 'A' && upper[0] <= 'Z':
		return Key{Name: upper, VK: uint16(upper[0]), Code: letterCodes[upper[0]]}, nil
	case len(upper) == 1 && upper[0] >= '0' && upper[0] <= '9':
		code := uint16(upper[0]-'0') + 1
		if upper[0] == '0' {
			code = 11
		}
		return Key{Name: upper, VK: uint16(upper[0]), Code: code}, nil
	}
	if key, ok := namedKeys[upper]; ok {
		return key, nil
	}
	var n int
	if _, err := fmt.Sscanf(upper, "F%d", &n); err == nil && upper == fmt.Sprintf("F%d", n) && n >= 1 && n <= 12 {
		code := uint16(58 + n)
		if n >= 11 {
			code = uint16(76 + n)
		}
		return Key{Name: upper, VK: uint16(0x6F + n), Code: code}, nil
	}
	return Key{}, fmt.Errorf("unsupported key %q", name)
}
