// Package preflight provides readiness checks for the record source, the
// output location, and the external codec binaries.
//
// The CLI "montage check" command prints every result. "montage compose"
// runs the same checks before decoding anything and stops on the first
// failure, so a long run never dies at export time on a full disk or a
// read-only directory.
package preflight
