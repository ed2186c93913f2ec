// Package apps describes the external tools the launcher manages.
//
// Each tool implements Application, a small set of accessors read from its
// config section. Presence checks, downloading, and spawning are package
// functions built on those accessors so every tool shares one
// implementation. Failures are classified with the sentinel errors in
// errors.go and should be tested with errors.Is.
package apps
