// Package chain defines the objects exchanged by nodes: transactions,
// multisignature co-signatures and blocks.
//
// Identifiers are numeric strings: the first eight bytes of the SHA256 digest
// of an object, read little-endian, printed in base 10.
package chain
