// Package report prints scrape results.
//
// Writers render one result (the latest) or a list of results (the history)
// as a terminal table, JSON or Markdown. JSON uses the stored field names so
// that output can be fed to anything that reads the store directly.
package report
