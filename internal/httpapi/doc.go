// Package httpapi serves the HTTP trigger.
//
//	GET /                 embedded page with a "run" button
//	GET /run-script       run a scrape, then return the latest record
//	GET /get-latest-data  return the latest record
//	GET /healthz          liveness
//	GET /metrics          plain-text counters
//
// JSON responses are {"status":"success","data":{...}} or
// {"status":"error","message":"..."}. Concurrent /run-script requests share
// one run.
package httpapi
