// Package pipeline coordinates document processing and question answering.
//
// A Coordinator moves a corpus through the stages
//
//	Empty -> Extracted -> Summarized -> Indexed -> Ready
//
// persisting the stage after every transition. Processing holds an exclusive
// lock for the whole run, so queries, which are only served in Ready, never
// observe a half-built index.
//
// Re-processing the document a store was built from is idempotent: units that
// already have an index entry are skipped, and units that failed before are
// retried. A different document is rejected with core.MixedCorpusError until
// the store is cleared.
package pipeline
