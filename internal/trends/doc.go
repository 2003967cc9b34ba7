// Package trends reads the trending topics page.
//
// Each trend element renders as several lines of text. ParseTrend maps the
// lines onto a TrendEntry through named rules and rejects elements whose
// topic line is missing or is not a hashtag. Extractor drives the session
// to the page and returns at most five accepted entries in page order.
package trends
