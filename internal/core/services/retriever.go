package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/ports/driven"
	"github.com/custodia-labs/normativa/internal/core/ports/driving"
	"github.com/custodia-labs/normativa/internal/logger"
)

// Ensure RetrieverService implements the interface.
var _ driving.Retriever = (*RetrieverService)(nil)

// BM25 parameters.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// RetrieverService ranks chunks with BM25 over folded tokens.
//
// A chunk is indexed as its title followed by its text, so a term found only
// in the title counts as contained. The score of a chunk is the number of
// distinct query terms in its title plus text, plus its BM25 score squashed
// into [0, 1). A chunk matching more distinct terms therefore always
// outranks one matching fewer. Chunks matching no term are never returned.
type RetrieverService struct {
	table driven.ChunkTableReader
	index atomic.Pointer[bm25Index]
}

// NewRetriever opens the chunk table and builds the index.
// Returns domain.ErrInitialization if the table is absent or unreadable.
func NewRetriever(ctx context.Context, table driven.ChunkTableReader) (*RetrieverService, error) {
	r := &RetrieverService{table: table}
	if err := r.Reload(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// NewPendingRetriever returns a retriever without an index. Queries fail
// with domain.ErrInitialization until Reload succeeds.
func NewPendingRetriever(table driven.ChunkTableReader) *RetrieverService {
	return &RetrieverService{table: table}
}

// Reload re-reads the chunk table and swaps the index.
// Queries running during the reload use the previous index.
func (r *RetrieverService) Reload(ctx context.Context) error {
	chunks, run, err := r.table.Load(ctx)
	if err != nil {
		return fmt.Errorf("load chunk table %s: %w", r.table.Path(), err)
	}

	idx := buildIndex(chunks)
	r.index.Store(idx)

	runID := ""
	if run != nil {
		runID = run.ID
	}
	logger.Info("Indexed %d of %d chunks from %s (run %s)", len(idx.docs), len(chunks), r.table.Path(), runID)
	return nil
}

// Size returns the number of indexed chunks.
func (r *RetrieverService) Size() int {
	idx := r.index.Load()
	if idx == nil {
		return 0
	}
	return len(idx.docs)
}

// Query returns at most k chunks ordered by descending score.
func (r *RetrieverService) Query(ctx context.Context, question string, k int) ([]domain.ScoredChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx := r.index.Load()
	if idx == nil {
		return nil, fmt.Errorf("%w: index not built", domain.ErrInitialization)
	}
	if k <= 0 {
		return []domain.ScoredChunk{}, nil
	}

	terms := uniqueTerms(tokenize(question))
	results := idx.search(terms)
	if len(results) > k {
		results = results[:k]
	}

	logger.Debug("Query %q: %d terms, %d results", question, len(terms), len(results))
	return results, nil
}

// indexedChunk is a searchable chunk with its term frequencies.
type indexedChunk struct {
	chunk  domain.Chunk
	tf     map[string]int
	length int
}

// bm25Index is immutable once built.
type bm25Index struct {
	docs      []indexedChunk
	postings  map[string][]int
	idf       map[string]float64
	avgLength float64
}

func buildIndex(chunks []domain.Chunk) *bm25Index {
	idx := &bm25Index{
		postings: make(map[string][]int),
		idf:      make(map[string]float64),
	}

	total := 0
	for _, c := range chunks {
		if !c.IsSearchable() {
			continue
		}
		// The title is indexed with the text so citations by name match.
		tokens := tokenize(c.Title + "\n" + c.Text)
		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		pos := len(idx.docs)
		for term := range tf {
			idx.postings[term] = append(idx.postings[term], pos)
		}
		idx.docs = append(idx.docs, indexedChunk{chunk: c, tf: tf, length: len(tokens)})
		total += len(tokens)
	}

	n := float64(len(idx.docs))
	if n > 0 {
		idx.avgLength = float64(total) / n
	}
	for term, list := range idx.postings {
		df := float64(len(list))
		idx.idf[term] = math.Log((n-df+0.5)/(df+0.5) + 1)
	}
	return idx
}

// search scores every chunk containing at least one term.
// Postings are in table order, so the stable sort keeps table order on ties.
func (idx *bm25Index) search(terms []string) []domain.ScoredChunk {
	matched := make(map[int]int)
	for _, term := range terms {
		for _, pos := range idx.postings[term] {
			matched[pos]++
		}
	}
	if len(matched) == 0 {
		return []domain.ScoredChunk{}
	}

	positions := make([]int, 0, len(matched))
	for pos := range matched {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	results := make([]domain.ScoredChunk, 0, len(positions))
	for _, pos := range positions {
		bm := idx.bm25(pos, terms)
		results = append(results, domain.ScoredChunk{
			Chunk: idx.docs[pos].chunk,
			Score: float64(matched[pos]) + bm/(bm+1),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

func (idx *bm25Index) bm25(pos int, terms []string) float64 {
	doc := idx.docs[pos]
	norm := 1 - bm25B
	if idx.avgLength > 0 {
		norm += bm25B * float64(doc.length) / idx.avgLength
	}

	var score float64
	for _, term := range terms {
		tf := float64(doc.tf[term])
		if tf == 0 {
			continue
		}
		score += idx.idf[term] * (tf * (bm25K1 + 1)) / (tf + bm25K1*norm)
	}
	return score
}

func uniqueTerms(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}
