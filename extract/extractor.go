package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/poiesic/docent/core"
)

// Extractor turns a source file into an ordered sequence of raw units.
type Extractor interface {
	// Extract reads path and returns its content in document order.
	// Failures are reported as *core.ExtractionError wrapping ErrFileNotFound,
	// ErrUnsupportedFormat or ErrMalformedElements.
	Extract(ctx context.Context, path string) (*Document, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, path string) (*Document, error)

// Extract calls f.
func (f ExtractorFunc) Extract(ctx context.Context, path string) (*Document, error) {
	return f(ctx, path)
}

// ElementsExtractor reads the JSON element dump a layout partitioner writes
// for a PDF, plus the figure images it saves alongside. A path ending in .pdf
// is resolved to the sidecar dump <name>.json next to it; the corpus tag is
// still derived from the PDF bytes so that re-partitioning the same PDF maps
// to the same corpus.
type ElementsExtractor struct {
	figuresDir    string
	figurePattern string
	chunk         ChunkOptions
	logger        *slog.Logger
}

// Option configures an ElementsExtractor.
type Option func(*ElementsExtractor) error

// WithFiguresDir sets the directory scanned for extracted figure images.
func WithFiguresDir(dir string) Option {
	return func(e *ElementsExtractor) error {
		e.figuresDir = dir
		return nil
	}
}

// WithFigurePattern sets the glob, relative to the figures directory, that
// selects figure files. Default is DefaultFigurePattern.
func WithFigurePattern(pattern string) Option {
	return func(e *ElementsExtractor) error {
		if pattern == "" {
			pattern = DefaultFigurePattern
		}
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid figure pattern %q", pattern)
		}
		e.figurePattern = pattern
		return nil
	}
}

// WithChunkOptions sets the text chunking thresholds.
func WithChunkOptions(opts ChunkOptions) Option {
	return func(e *ElementsExtractor) error {
		if opts.MaxCharacters < 0 || opts.NewAfterNChars < 0 || opts.CombineTextUnderNChars < 0 {
			return fmt.Errorf("chunk thresholds must not be negative")
		}
		e.chunk = opts
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *ElementsExtractor) error {
		e.logger = logger
		return nil
	}
}

// NewElementsExtractor creates an extractor with default chunk thresholds.
func NewElementsExtractor(opts ...Option) (*ElementsExtractor, error) {
	e := &ElementsExtractor{
		figurePattern: DefaultFigurePattern,
		chunk:         DefaultChunkOptions(),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "extractor")
	return e, nil
}

var _ Extractor = (*ElementsExtractor)(nil)

// Extract reads the element dump for path and the figures directory.
func (e *ElementsExtractor) Extract(ctx context.Context, path string) (*Document, error) {
	fail := func(err error) (*Document, error) {
		return nil, &core.ExtractionError{Source: path, Cause: err}
	}

	dumpPath, err := resolveDump(path)
	if err != nil {
		return fail(err)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return fail(err)
	}
	dump := source
	if dumpPath != path {
		if dump, err = os.ReadFile(dumpPath); err != nil {
			return fail(err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	elements, err := parseElements(dump)
	if err != nil {
		return fail(err)
	}

	doc := &Document{
		Source: path,
		Corpus: core.CorpusTagFromContent(source),
	}
	if err := e.collectElements(doc, elements); err != nil {
		return fail(err)
	}
	if err := e.collectFigures(ctx, doc); err != nil {
		return fail(err)
	}
	if len(doc.Units) == 0 {
		return fail(ErrNoContent)
	}

	counts := doc.Counts()
	e.logger.Info("extracted document",
		"source", path,
		"corpus", doc.Corpus,
		"text", counts[core.KindText],
		"tables", counts[core.KindTable],
		"images", counts[core.KindImage])
	return doc, nil
}

// collectElements chunks prose and emits tables and inline images in place.
func (e *ElementsExtractor) collectElements(doc *Document, elements []element) error {
	chunks := newChunker(e.chunk)
	emitText := func() {
		for _, chunk := range chunks.drain() {
			doc.Units = append(doc.Units, RawUnit{
				Kind:    core.KindText,
				Payload: []byte(chunk.text),
				Location: core.SourceLocation{
					Page:    chunk.page,
					Offset:  len(doc.Units),
					Element: chunk.elementID,
				},
			})
		}
	}

	for _, el := range elements {
		switch elementKind(el.Type) {
		case core.KindText:
			chunks.add(textElement{
				text:      el.Text,
				title:     isTitle(el.Type),
				page:      el.Metadata.PageNumber,
				elementID: el.ElementID,
			})
		case core.KindTable:
			emitText()
			payload := tablePayload(el)
			if payload == "" {
				continue
			}
			doc.Units = append(doc.Units, RawUnit{
				Kind:    core.KindTable,
				Payload: []byte(payload),
				Location: core.SourceLocation{
					Page:    el.Metadata.PageNumber,
					Offset:  len(doc.Units),
					Element: el.ElementID,
				},
			})
		case core.KindImage:
			data, mediaType, err := inlineImage(el)
			if err != nil {
				return err
			}
			if data == nil {
				// Images saved to disk are picked up from the figures directory
				continue
			}
			emitText()
			doc.Units = append(doc.Units, RawUnit{
				Kind:      core.KindImage,
				Payload:   data,
				MediaType: mediaType,
				Location: core.SourceLocation{
					Page:    el.Metadata.PageNumber,
					Offset:  len(doc.Units),
					Element: el.ElementID,
				},
			})
		}
	}
	emitText()
	return nil
}

// collectFigures appends every image in the figures directory.
// Unreadable files are skipped with a warning.
func (e *ElementsExtractor) collectFigures(ctx context.Context, doc *Document) error {
	figures, err := listFigures(e.figuresDir, e.figurePattern)
	if err != nil {
		return err
	}
	for _, fig := range figures {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := os.ReadFile(fig.path)
		if err != nil {
			e.logger.Warn("failed to read figure", "path", fig.path, "err", err)
			continue
		}
		if len(data) == 0 {
			continue
		}
		doc.Units = append(doc.Units, RawUnit{
			Kind:      core.KindImage,
			Payload:   data,
			MediaType: fig.mediaType,
			Location: core.SourceLocation{
				Page:    fig.page,
				Offset:  len(doc.Units),
				Element: fig.name,
			},
		})
	}
	return nil
}

// resolveDump maps a source path onto the element dump to read.
func resolveDump(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrUnsupportedFormat, path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return path, nil
	case ".pdf":
		sidecar := strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
		if _, err := os.Stat(sidecar); err != nil {
			return "", fmt.Errorf("%w: no element dump %s for %s", ErrUnsupportedFormat, filepath.Base(sidecar), filepath.Base(path))
		}
		return sidecar, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
