// Package services wraps the Spotify Web API behind the [Service] interface.
//
// [SpotifyService] implements the read-only surface the extraction pipeline
// needs: one bounded page of the user's playlists, paginated playlist items
// with continuation URLs, and single-artist lookups for genre enrichment.
// The [OAuthService] interface extends Service for OAuth providers.
//
// Non-2xx responses surface as [APIError]; [FetchWithRetry] handles the
// rate-limit/forbidden class with bounded, server-hinted waits and reports
// the result as a tagged [Outcome].
package services
