// Package replaywatch launches the replay renderer when a replay is saved
// while the render key is held.
//
// Subscribe pushes creation events from the replay directory into a
// channel. Trigger owns the policy loop that reads that channel, checks the
// key, and starts the renderer with an Invocation built from the new file.
// Start wires both together for a configured renderer and returns a Session
// that lives until its context ends.
package replaywatch
