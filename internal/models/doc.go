// Package models defines the data shapes shared by the session, client and presentation layers.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): structs decoded from the Spotify Web API
//   - [Identity] : The signed in user's profile, or the synthetic guest identity
//   - [Image] : Artwork or avatar references
//   - [Playlist] : Simplified playlist metadata
//   - [Album] : Album metadata from the library and new releases endpoints
//   - [Page] : Offset based pagination envelope
//
// 2. Persistent Entities: database backed records
//   - [LoginEvent] : Audit trail of login, guest login and logout attempts
//
// Persistent entities implement the [Model] interface; [Repository] defines the data access contract.
package models
