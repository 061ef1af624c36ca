// Package extract turns a source document into raw content units.
//
// PDF layout analysis and OCR happen outside this module: a partitioner
// writes a JSON element dump (one object per element with type, element_id,
// text and metadata) and saves figure images to a directory. ElementsExtractor
// reads both, chunks prose by title using the MaxCharacters, NewAfterNChars
// and CombineTextUnderNChars thresholds, and keeps tables and images whole.
//
// Other sources can plug in through the Extractor interface or ExtractorFunc.
package extract
