// Package ui provides semantic text formatting for CLI output.
//
// Formatters render content (commands, paths, environment names) in colour
// when the terminal supports it. When NO_COLOR is set or the terminal has no
// colour support, text decorations are used instead:
//
//	ui.Code.Sprint("stand migrate")         // `stand migrate`
//	ui.Highlight.Sprint("prod")             // 'prod'
//	ui.Muted.Sprint("inherited-from-dev")   // (inherited-from-dev)
//	ui.Secret.Sprint("encrypted")           // <encrypted>
//
// Environment names use the colour set in the document:
//
//	ui.Environment(resolved.Color).Sprint(resolved.Environment)
package ui
