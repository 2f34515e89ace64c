// Package access implements the authentication state machine and the
// failed-attempt lockout policy.
//
// A user is in one of three derived states, computed on every query from
// the stored record and the current instant:
//
//   - Authenticated while the last successful authentication is younger than
//     the session duration;
//   - Blocked while a lockout stamped by too many failures is younger than
//     the block duration;
//   - NotAuthenticated otherwise.
//
// Nothing expires on a timer. Service is the only component that mutates a
// user's counters, and it serialises those mutations per user id.
package access
