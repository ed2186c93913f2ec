//go:build linux

package keystate

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unsafe"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sys/unix"
)

// keyStateBytes covers KEY_MAX (0x2ff) as a bitmap.
const keyStateBytes = 96

// eviocgkey is EVIOCGKEY(len): _IOC(_IOC_READ, 'E', 0x18, len).
const eviocgkey = (2 << 30) | (keyStateBytes << 16) | ('E' << 8) | 0x18

var errNoKeyboard = errors.New("no keyboard event device found under /dev/input")

var keyboardGlobs = []string{
	"/dev/input/by-path/*-event-kbd",
	"/dev/input/by-id/*-event-kbd",
}

type evdevKeyState struct {
	device string
}

// NewSystem returns a checker that reads the key bitmap of an evdev
// keyboard. An empty device selects the first keyboard found under
// /dev/input, looked up on every query so a keyboard plugged in later is
// picked up. A missing device surfaces as a query error, not here. Reading
// requires membership of the input group.
func NewSystem(device string) (Checker, error) {
	return &evdevKeyState{device: strings.TrimSpace(device)}, nil
}

func findKeyboard() (string, error) {
	for _, pattern := range keyboardGlobs {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			continue
		}
		if len(matches) > 0 {
			return matches[0], nil
		}
	}
	return "", errNoKeyboard
}

func (e *evdevKeyState) Held(key Key) (bool, error) {
	if key.Code == 0 {
		return false, fmt.Errorf("key %q has no evdev code", key.Name)
	}
	device := e.device
	if device == "" {
		found, err := findKeyboard()
		if err != nil {
			return false, err
		}
		device = found
	}
	f, err := os.Open(device)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", device, err)
	}
	defer f.Close()

	var state [keyStateBytes]byte
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), uintptr(eviocgkey), uintptr(unsafe.Pointer(&state[0])))
	if errno != 0 {
		return false, fmt.Errorf("EVIOCGKEY %s: %w", device, errno)
	}
	return state[key.Code/8]&(1<<(key.Code%8)) != 0, nil
}
