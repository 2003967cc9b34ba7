// Package config provides configuration structures and utilities for trendscan.
// It defines the egress proxy list, destination URLs and selectors, stage
// timeouts, humanized delay bounds, the record store, and the credentials
// read from the environment.
package config
