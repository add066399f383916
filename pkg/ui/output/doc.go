// Package output renders dotsync results for the terminal.
//
// Rendering has two phases. Go templates embedded from templates/ turn
// results into text carrying XML-like style tags:
//
//	<Percent>{{.Percent}}</Percent> [<Success>●</Success>] <FilePath>~/.zshrc</FilePath>
//
// lipbalm then expands the tags with the styles registered in styles/, or
// strips them when color is off. Values interpolated into templates must go
// through the esc function so that paths and messages containing markup
// characters survive tag expansion.
//
// Tables (status, list, history) are drawn with pterm and tablewriter.
package output
