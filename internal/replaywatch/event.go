package replaywatch

import "time"

// Event is one filesystem creation observed under the watched directory.
type Event struct {
	// Path is the absolute path of the created entry.
	Path string
	Time time.Time
}
