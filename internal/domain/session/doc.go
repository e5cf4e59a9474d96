// Package session models the authenticated state of an École Directe
// account: the bearer token issued at login plus the account record and the
// student roster decoded from the login response.
//
// A session is ephemeral. It is rebuilt from scratch on every login and is
// never persisted, the provider invalidates tokens server-side whenever it
// pleases. Consumers hold the Session value for the lifetime of one
// authenticated exchange and drop it afterwards.
//
// Account shapes:
//
//   - A student account ("E") describes the student directly. The roster
//     contains exactly one entry built from the account's own fields.
//   - Any other account type is a family account. The roster is read from
//     the account profile and may hold several linked students.
//
// Student names feed operator-facing identifiers, so the package also owns
// the slug normalization used to derive stable entity names from them.
package session
