// Package model defines the core data structures used throughout trendscan.
//
// This package contains the following main types:
//   - ProxyEndpoint: An egress proxy address that browser traffic is routed through
//   - Credentials / Secrets: Proxy and platform login pairs supplied once per run
//   - TrendEntry: One validated trending topic read from the trending page
//   - ScrapeResult: The single record persisted for a successful run
//   - AuthOutcome / Verdict: Tagged results threaded through the run loop
//
// Models live in their own package so that the proxy, browser, auth, trends,
// pipeline and store packages can share them without import cycles.
package model
