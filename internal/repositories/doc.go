// Package repositories implements SQLite persistence for the extracted
// playlist library. All inserts use INSERT OR IGNORE so re-running an
// extraction over the same library is a no-op for rows already present.
package repositories
