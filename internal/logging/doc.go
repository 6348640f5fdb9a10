// Package logging assembles the slog loggers used by montage.
//
// New builds either a console handler (timestamped header line followed by one
// labelled field per line) or a JSON handler, writing to stdout and optionally a
// log file. WithContext stamps the run id, pipeline stage, and record key held
// in a context onto a logger so every line from one composition can be
// correlated. ProgressSampler throttles per-clip progress output when no
// terminal progress bar is attached.
package logging
