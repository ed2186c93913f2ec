// Package deps summarizes the install state of the managed applications for
// the status command and the run log.
package deps
