// Package identity implements Wayfare's identity and authentication core:
// registration with derived-username uniqueness, credential verification,
// profile mutation control, and the credential store boundary.
//
// Storage engines (PostgreSQL, MongoDB, in-memory) plug in behind the Store
// interface; uniqueness of email and username is always enforced by the
// engine's unique index, never by in-process locking.
package identity
