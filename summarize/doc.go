// Package summarize produces surrogates: short natural-language descriptions
// of content units that are embedded and searched in place of the raw content.
//
// Text and table units are summarized with the summary model; images are
// described by the vision model. GenerateBatch fans units out over a bounded
// worker pool and reports one Result per unit, so a failing unit never aborts
// the rest of the batch.
package summarize
