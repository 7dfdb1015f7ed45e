// Package ir provides the value model and compiled spec representation for
// cadcad spaces.
//
// This package contains type definitions and serialization only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Int and Float are distinct kinds; JSON number literals with a '.' or
//     exponent are floats, everything else is an int
//   - There is no null value
//   - Canonical JSON (RFC 8785 key order, NFC strings) is the only
//     serialization used for content-addressed identity
//   - All JSON tags use snake_case
package ir
