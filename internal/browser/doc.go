// Package browser owns the browsing session a run attempt works in.
//
// A Launcher creates one Session per egress endpoint: a fresh incognito
// Chrome whose traffic goes through the endpoint, with the proxy's
// credentials answered over the DevTools Fetch domain. The caller owns the
// Session and must Release it on every exit path.
//
// Pacer produces the humanized pauses between navigations and keystrokes,
// and Snapshotter writes diagnostic screenshots when a stage fails.
package browser
