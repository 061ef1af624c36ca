// Package index implements the multi-vector index: surrogates are embedded and
// searched, but every hit resolves to the raw content unit it describes.
//
// Each Index call writes the vector entry and the raw mapping in one storage
// transaction, so a searchable vector without retrievable content can never
// be observed. Search ranks by inner product of unit-length vectors (cosine
// similarity) and breaks ties by insertion order.
package index
