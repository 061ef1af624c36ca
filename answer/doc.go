// Package answer implements retrieval-augmented question answering over a
// multi-vector index.
//
// An Answerer retrieves the top-k raw units for a question, assembles them
// into a bounded context (dropping whole units from the lowest-similarity end
// when over budget), and makes a single generation call. Image units are
// attached to the call as images and switch it to the vision model.
package answer
