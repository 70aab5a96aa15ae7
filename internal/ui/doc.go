// Package ui styles terminal output for the gmusic CLI with lipgloss.
//
// [Palette] holds the named styles used for headings, status lines and hints. [ResultsTable] and
// [HistoryTable] render search results and the query log as bordered tables.
package ui
