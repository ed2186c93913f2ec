// Package main hosts the launcher CLI.
//
// Running the binary with no subcommand performs a full launch. The other
// commands inspect what a run would do (status), fetch tools ahead of time
// (download), browse the history journal, and scaffold or check the
// configuration. The heavy lifting lives in internal/launchrun and the
// packages it wires together.
package main
