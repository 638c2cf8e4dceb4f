// Package monitor is the interactive dashboard. App owns the input reader,
// the collector and the compositor and runs the main loop; Renderer draws
// published snapshots into compositor buffers from the collector goroutine.
//
// Main loop:
//
//	timer tick      -> Collect(all, draw_now)
//	key/mouse event -> selection/options change -> Collect(proc, redraw|only_draw)
//	SIGWINCH        -> relayout -> Collect(all, only_draw)
//	SIGTSTP/ctrl+z  -> Suspended; SIGCONT -> Running
package monitor
