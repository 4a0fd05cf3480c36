// Package viz draws a running gravity simulation in the terminal.
//
// The view is a Bubble Tea program:
//
//   - [Canvas]: Braille-based pixel canvas, 2x4 dots per cell
//   - [Camera]: orbit camera projecting world positions onto the canvas
//   - [Model]: steps the simulator on every tick and renders bodies, trails
//     and an energy plot
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Rebuild the scene from scratch
//	+/-   - Zoom
//	X/Y   - Rotate camera (shift reverses)
//	G     - Raise gravity 10% (shift lowers it)
//	[/]   - Fewer/more steps per frame
//	Q     - Quit
package viz
