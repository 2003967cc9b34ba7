// Package store persists scrape results.
//
// Every backend stores the same record shape: _id, trend1..trend5 (nullable),
// timestamp ("YYYY-MM-DD HH:MM:SS") and ip_address. Readers of the store
// depend on these names, so they never change between backends.
//
// SQLite (modernc.org/sqlite, CGO-free) is the default and needs nothing but
// a directory. PostgreSQL and MongoDB are selected with the store driver
// setting and a DSN.
package store
