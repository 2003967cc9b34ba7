// Package main provides the entry point for the trendscan CLI.
//
// trendscan logs in to X through a rotating list of egress proxies, reads
// the top trending hashtags and stores them with the time and the proxy used.
//
// Usage:
//
//	trendscan run
//	trendscan serve --listen 127.0.0.1:5000
//	trendscan latest --output json
//
// See --help for all available options.
package main

func main() {
	Execute()
}
