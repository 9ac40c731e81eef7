package rag

import (
	"strings"

	"go.uber.org/zap"

	"github.com/ragent-ai/ragent/types"
)

// Separator priority: paragraph breaks, then line breaks, then sentence
// ends, then whitespace. Raw rune cuts are the last resort.
var separators = []string{"\n\n", "\n", ". ", "! ", "? ", " "}

// ChunkingConfig controls segment sizing. Sizes are in runes.
type ChunkingConfig struct {
	ChunkSize    int `json:"chunk_size" yaml:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap"`
}

// DefaultChunkingConfig returns the production defaults.
func DefaultChunkingConfig() ChunkingConfig {
	return ChunkingConfig{
		ChunkSize:    300,
		ChunkOverlap: 30,
	}
}

// Chunker splits documents into overlapping segments. Split is a pure
// function of the input text and the configured sizes.
type Chunker struct {
	cfg    ChunkingConfig
	logger *zap.Logger
}

// NewChunker creates a chunker, validating that the overlap fits inside
// the chunk size.
func NewChunker(cfg ChunkingConfig, logger *zap.Logger) (*Chunker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ChunkSize <= 0 {
		return nil, types.NewValidationError("chunk size must be positive")
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, types.NewValidationError("chunk overlap must be in [0, chunk size)")
	}
	return &Chunker{cfg: cfg, logger: logger}, nil
}

// Split partitions a document into ordered overlapping segments.
// Blank or whitespace-only input fails with EMPTY_DOCUMENT; it never
// yields an empty segment list.
func (c *Chunker) Split(doc Document) ([]Segment, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, types.NewEmptyDocumentError("document content is empty")
	}

	runes := []rune(doc.Content)

	// Base pieces are sized so that prepending the overlap keeps every
	// segment within ChunkSize. A document that fits one chunk stays a
	// single segment with no overlap.
	target := c.cfg.ChunkSize
	if c.cfg.ChunkOverlap > 0 && len(runes) > c.cfg.ChunkSize {
		target = c.cfg.ChunkSize - c.cfg.ChunkOverlap
	}

	pieces := recursiveSplit(doc.Content, separators, target)

	segments := make([]Segment, 0, len(pieces))
	pos := 0
	for i, piece := range pieces {
		pieceLen := len([]rune(piece))
		start := pos
		overlap := 0
		if i > 0 {
			overlap = c.cfg.ChunkOverlap
			if overlap > pos {
				overlap = pos
			}
			start = pos - overlap
		}
		segments = append(segments, Segment{
			DocumentID: doc.ID,
			Filename:   doc.Filename,
			Position:   i,
			Text:       string(runes[start : pos+pieceLen]),
			Overlap:    overlap,
			Length:     pieceLen + overlap,
		})
		pos += pieceLen
	}

	c.logger.Info("document split",
		zap.String("document_id", doc.ID),
		zap.String("filename", doc.Filename),
		zap.Int("segments", len(segments)),
		zap.Int("chunk_size", c.cfg.ChunkSize),
		zap.Int("overlap", c.cfg.ChunkOverlap))

	return segments, nil
}

// recursiveSplit cuts text into pieces of at most target runes, trying
// each separator in priority order and keeping separators attached to the
// preceding piece so that concatenating the pieces reproduces the input
// exactly. Oversized parts fall through to the next separator; with no
// separators left, raw rune cuts apply. Adjacent small pieces are merged
// back up to the target.
func recursiveSplit(text string, seps []string, target int) []string {
	if runeLen(text) <= target {
		return []string{text}
	}
	if len(seps) == 0 {
		runes := []rune(text)
		var out []string
		for i := 0; i < len(runes); i += target {
			end := i + target
			if end > len(runes) {
				end = len(runes)
			}
			out = append(out, string(runes[i:end]))
		}
		return out
	}

	var pieces []string
	for _, part := range strings.SplitAfter(text, seps[0]) {
		if part == "" {
			continue
		}
		if runeLen(part) > target {
			pieces = append(pieces, recursiveSplit(part, seps[1:], target)...)
		} else {
			pieces = append(pieces, part)
		}
	}
	return mergeSmall(pieces, target)
}

// mergeSmall greedily merges adjacent pieces while they fit the target.
func mergeSmall(pieces []string, target int) []string {
	var out []string
	current := ""
	for _, p := range pieces {
		if current == "" {
			current = p
			continue
		}
		if runeLen(current)+runeLen(p) <= target {
			current += p
		} else {
			out = append(out, current)
			current = p
		}
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}

func runeLen(s string) int {
	return len([]rune(s))
}
