// Package pipeline runs a scrape across the configured egress endpoints.
//
// Runner walks the endpoints in order. Each endpoint gets one attempt: a
// browser session is launched, the attempt Pipeline runs its steps
// (authentication, then extraction) on a *model.Attempt, and the pure
// Decide function turns the attempt into a Verdict. The first successful
// attempt is persisted and ends the run; every other outcome moves on to the
// next endpoint, except for a cancelled context or missing credentials,
// which abort the run.
//
// The session of an attempt is owned by the Runner and is always released
// before the next endpoint is tried, whatever the attempt did.
package pipeline
