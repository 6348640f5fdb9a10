// Package pipeline runs one montage end to end: load records, query them,
// budget and compose the timeline, then export the audio and manifest.
//
// Exports are staged as hidden temp files beside their destinations and
// renamed only after every output has been written, so a failed run never
// leaves a half-written audio/manifest pair behind. Runs that target the same
// output are serialized with a lock file.
package pipeline
