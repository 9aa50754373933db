// Package models defines the persisted entities of the extracted library.
//
// Five entities mirror the five database tables:
//   - [Artist] : primary artist with comma-joined genre tags
//   - [Album] : album referencing the track's primary artist
//   - [Track] : song metadata referencing its album
//   - [Playlist] : playlist metadata with the declared track total
//   - [PlaylistTrack] : playlist↔track membership relation
//
// All entities are keyed by Spotify's opaque string identifiers, written
// insert-or-ignore during a single extraction pass, and never updated or
// deleted afterward. Each type carries a Validate method checking the
// primary key and reference fields before a row is written.
package models
