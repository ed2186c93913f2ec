// Package launchrun wires configuration, logging, the history journal, and
// the single-instance lock around one coordinator run. Each run writes its
// own log file and points launcher.log at it.
package launchrun
