// Package protocol owns the SIB1 wire contract.
//
// Ownership boundary:
// - UPER encode of the BCCH-DL-SCH message tree (Encode)
// - reciprocal decode used for verification (Decode)
// - per: bit-level X.691 unaligned primitives
// - schema: PER-visible bounds
// - frame: length-prefixed stream framing
// - session: dial, send one frame, close
package protocol
