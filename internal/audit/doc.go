// Package audit records changes made to a project's configuration.
//
// Every mutation (set, unset, init, migrate, encryption changes) appends a
// line to a JSON Lines file, by default $XDG_DATA_HOME/stand/audit.jsonl:
//
//	{"ts":"2025-01-02T03:04:05.000000Z","user":"ana","op":"set","project":"api","env":"prod","var":"API_KEY","encrypted":true}
//
// Entries carry variable names only. Values, encrypted or not, are never
// written.
//
// Auditing is best-effort: Log returns its error so callers can warn, but
// no operation fails because the trail could not be written.
package audit
