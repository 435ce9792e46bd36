// Package viz renders solved trajectories in the terminal.
//
// A braille [Canvas] is the dot surface, [Camera] projects three
// dimensional states with a rotating perspective transform, and [Model]
// wraps both in a Bubble Tea replay with a stats sidebar. [RunPicker]
// adds a preset browser in front of the replay.
//
// # Key Bindings
//
//	Space - Pause/Resume the replay
//	[ ]   - Scrub backward/forward
//	Arrows- Rotate the camera
//	+ / - - Zoom
//	< / > - Replay speed
//	A     - Toggle axes
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	R     - Restart
//
// # Recording
//
// The replay can be recorded as an animated GIF with the G key. Frames are
// rasterized from the braille canvas and written to the working directory
// when recording stops or the replay ends.
package viz
