// Package session owns the sender side of one framed delivery.
//
// Ownership boundary:
// - connect/write timeouts
// - dial, single frame write, guaranteed close
// - connection error taxonomy
package session
