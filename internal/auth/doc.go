// Package auth logs a browser session in to the target platform.
//
// Login is a fixed sequence of stages: open the home page, open the login
// page, submit the username, submit the password, then wait for the home
// timeline marker. Each stage is bounded. A stage that fails ends the
// sequence with model.AuthFailed, after a diagnostic snapshot; it is never
// reported as an error, and the caller decides what a failed login means.
package auth
