// Command montage builds a single audio track from a tagged sample corpus.
//
// Records are selected with field predicates, ordered by sort keys, and a
// short clip of each sample is crossfaded onto a timeline that fits a maximum
// duration. A JSON manifest maps every sample key to its offset and length in
// the output.
//
// Subcommands:
//
//	compose   build the audio track and manifest
//	query     list the records a compose would use
//	stats     count field values across the selected records
//	import    copy a JSON or YAML record store into SQLite or Postgres
//	check     verify codecs, record store, and output location
//	config    create or validate the configuration file
package main
