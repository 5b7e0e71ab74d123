// Package report renders evaluation reports in multiple output formats.
//
// Three writers are provided: SimpleWriter for terminal display, JSONWriter
// for tool integration, and MarkdownWriter for documentation and sharing.
// All writers implement the same Writer interface over an evaluation report,
// and MultiWriter fans one report out to several destinations at once.
package report
