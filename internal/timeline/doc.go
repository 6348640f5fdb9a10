// Package timeline turns an ordered record list into a mixed audio canvas and
// a placement manifest.
//
// A run moves through fixed stages: the duration budget is checked and the
// record list trimmed from the tail when it does not fit, a silent canvas is
// allocated, and each record's clip is decoded, cut, faded, and overlaid at a
// cursor that advances by the clip length minus the overlap. Overlap is
// capped at half of each clip's actual length so the cursor never moves
// backwards.
//
// Decoding may run on several goroutines, but overlays are applied one at a
// time in record order, so the canvas and manifest do not depend on the
// worker count.
package timeline
