// Package models defines the result records produced by the Google Play Music resolver and the persisted query history.
//
// The package contains two categories of types:
//
// 1. Resolver records: normalized shapes delivered to the host
//   - [Credentials] : ClientLogin account
//   - [TrackResult] : A playable track with a gmusic:track: URL
//   - [AlbumResult] : Album artist, name and year
//   - [ArtistResult] : Artist name
//   - [Results] : The three ordered lists produced by one search
//
// 2. Persistent entities: database-backed models
//   - [QueryRecord] : One search or resolve issued through the resolver
//
// Optional provider fields are pointers; a nil pointer means the catalog omitted the field.
// Persistent entities implement the Model interface and are stored through Repository[T].
package models
