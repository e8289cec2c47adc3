// Package solution defines Solution, the immutable record of one priced
// selection path, and the collection and document types that hold them.
//
// # Identity
//
// A solution is identified by its hash, a SHA-1 over the model name, the
// resolved selection steps and the price (see Fingerprint). The position
// inside a Collection is only an address for export and removal.
//
// # Mark paths
//
// In documents a path is written as query-escaped pairs:
//
//	Color=Red&Trim=Sport+Line
package solution
