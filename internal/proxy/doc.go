// Package proxy supplies the egress endpoints a run walks through.
//
// The Rotator hands out the configured endpoints in their fixed order,
// once each per run. The Prober checks endpoint reachability for the
// proxies command, and EmbeddedTor can provide one extra SOCKS5 endpoint
// that is tried after every configured proxy.
package proxy
