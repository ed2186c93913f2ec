// Package keystate answers "is this key held right now" for the render
// trigger. Windows uses GetAsyncKeyState and Linux reads the evdev key
// bitmap with EVIOCGKEY. Sampler spreads the check over a short window so a
// key released just before the filesystem event arrives still counts.
package keystate
