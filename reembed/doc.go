// Package reembed refreshes the vectors of an existing multi-vector index
// with a new or updated embedding model.
//
// Every index entry keeps the surrogate text it was embedded from, so
// re-embedding needs no summarization calls and leaves the raw content units
// untouched. Entries are processed in ID order in fixed-size batches, with
// retry and exponential backoff on embedding failures. Vectors are normalized
// before they are written so inner-product search stays cosine similarity.
//
// A run that changes the embedding dimension must complete before the index
// is searched again.
package reembed
