// Package rrc owns the in-memory BCCH-DL-SCH message tree.
//
// Ownership boundary:
// - message model types (choices, sequences, digit lists)
// - builder that links a complete tree or reports one error
// - diagnostic dump of a built tree
package rrc
