//go:build windows

package keystate

import (
	"fmt"

	"golang.org/x/sys/windows"
)

var procGetAsyncKeyState = windows.NewLazySystemDLL("user32.dll").NewProc("GetAsyncKeyState")

type asyncKeyState struct{}

// NewSystem returns the GetAsyncKeyState-backed checker. The device
// argument is ignored on Windows.
func NewSystem(string) (Checker, error) {
	if err := procGetAsyncKeyState.Find(); err != nil {
		return nil, fmt.Errorf("load GetAsyncKeyState: %w", err)
	}
	return asyncKeyState{}, nil
}

func (asyncKeyState) Held(key Key) (bool, error) {
	if key.VK == 0 {
		return false, fmt.Errorf("key %q has no virtual-key code", key.Name)
	}
	r1, _, _ := procGetAsyncKeyState.Call(uintptr(key.VK))
	// The most significant bit of the SHORT result is set while the key is down.
	return int16(r1) < 0, nil
}
