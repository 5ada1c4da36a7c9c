package converter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"deco2html/markup"
)

// chunk is one independently parsable slice of the document.
type chunk struct {
	id        int
	firstLine int // 1-based line of lines[0] in the whole document
	lines     []string
}

// ChunkError records the failure of a single chunk. Other chunks are not
// affected by it.
type ChunkError struct {
	Chunk   int
	Line    int // first line of the failed chunk
	Message string
}

// ChunkReport summarizes a chunked parse.
type ChunkReport struct {
	Chunks int
	Failed []ChunkError
}

// SuccessRatio is the fraction of chunks parsed without failure.
func (r *ChunkReport) SuccessRatio() float64 {
	if r.Chunks == 0 {
		return 1
	}
	return float64(r.Chunks-len(r.Failed)) / float64(r.Chunks)
}

// parsedChunk is a finished chunk, stored with chunk-relative line numbers
// so cache hits can be materialized at any offset.
type parsedChunk struct {
	root   *markup.Node
	issues []markup.Issue
}

// Cache memoizes chunk parses by content hash for the lifetime of one
// conversion run. Workers fill private caches which are merged after join,
// so the shared map is never written concurrently.
type Cache struct {
	entries map[string]*parsedChunk
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*parsedChunk)}
}

func (c *Cache) get(key string) (*parsedChunk, bool) {
	p, ok := c.entries[key]
	return p, ok
}

func (c *Cache) merge(local map[string]*parsedChunk) {
	for k, v := range local {
		if _, exists := c.entries[k]; !exists {
			c.entries[k] = v
		}
	}
}

func chunkKey(lines []string) string {
	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

// splitChunks cuts the line sequence roughly every size lines, but only at
// block-safe boundaries (no open block, no open code fence), so every chunk
// parses independently.
func splitChunks(lines []string, size int) []chunk {
	if size <= 0 || len(lines) <= size {
		return []chunk{{id: 0, firstLine: 1, lines: lines}}
	}

	var chunks []chunk
	depth := 0
	inCode := false
	start := 0

	for i, line := range lines {
		switch markup.ClassifyLine(line, inCode) {
		case markup.LineCodeFence:
			inCode = !inCode
		case markup.LineBlockOpen:
			depth++
		case markup.LineBlockClose:
			if depth > 0 {
				depth--
			}
		}
		atBoundary := depth == 0 && !inCode
		if i-start+1 >= size && atBoundary {
			chunks = append(chunks, chunk{id: len(chunks), firstLine: start + 1, lines: lines[start : i+1]})
			start = i + 1
		}
	}
	if start < len(lines) {
		chunks = append(chunks, chunk{id: len(chunks), firstLine: start + 1, lines: lines[start:]})
	}
	if len(chunks) == 0 {
		chunks = []chunk{{id: 0, firstLine: 1, lines: lines}}
	}
	return chunks
}

type chunkResult struct {
	parsed *parsedChunk
	err    *ChunkError
}

// ParseChunked parses a large document in parallel chunks. Results are
// collected by chunk id and reassembled in document order, so output order
// never depends on completion order. A failing chunk (including a panicking
// one) is recorded in the report while the remaining chunks complete. The
// context cancels or deadlines the whole run.
func ParseChunked(ctx context.Context, lines []string, reg *markup.KeywordRegistry, cfg Config, cache *Cache) (*markup.Node, []markup.Issue, *ChunkReport, error) {
	if cache == nil {
		cache = NewCache()
	}
	chunks := splitChunks(lines, cfg.ChunkSize)
	report := &ChunkReport{Chunks: len(chunks)}

	results := make([]chunkResult, len(chunks))
	jobs := make(chan chunk)
	workers := cfg.workerCount()

	var wg sync.WaitGroup
	localCaches := make([]map[string]*parsedChunk, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		local := make(map[string]*parsedChunk)
		localCaches[w] = local
		go func() {
			defer wg.Done()
			for c := range jobs {
				results[c.id] = parseOneChunk(ctx, c, reg, cache, local)
			}
		}()
	}

	for _, c := range chunks {
		jobs <- c
	}
	close(jobs)
	wg.Wait()

	// merge worker caches after join; the shared cache is single-writer here
	for _, local := range localCaches {
		cache.merge(local)
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, report, fmt.Errorf("chunked parse canceled: %w", err)
	}

	root := markup.NewContainer(markup.KindDocument, 1)
	var issues []markup.Issue
	for id, res := range results {
		if res.err != nil {
			report.Failed = append(report.Failed, *res.err)
			root.Append(markup.NewErrorNode(
				fmt.Sprintf("チャンク %d の解析に失敗しました", id), res.err.Line))
			continue
		}
		offset := chunks[id].firstLine - 1
		chunkRoot := res.parsed.root.Clone()
		shiftLines(chunkRoot, offset)
		for _, child := range chunkRoot.Children() {
			root.Append(child)
		}
		for _, issue := range res.parsed.issues {
			issue.Line += offset
			issues = append(issues, issue)
		}
	}
	return root, issues, report, nil
}

// parseOneChunk parses a single chunk with panic isolation. The result is
// stored with chunk-relative line numbers for cacheability.
func parseOneChunk(ctx context.Context, c chunk, reg *markup.KeywordRegistry, shared *Cache, local map[string]*parsedChunk) (res chunkResult) {
	defer func() {
		if rec := recover(); rec != nil {
			res = chunkResult{err: &ChunkError{
				Chunk:   c.id,
				Line:    c.firstLine,
				Message: fmt.Sprintf("panic: %v", rec),
			}}
		}
	}()

	if err := ctx.Err(); err != nil {
		return chunkResult{err: &ChunkError{Chunk: c.id, Line: c.firstLine, Message: err.Error()}}
	}

	key := chunkKey(c.lines)
	if hit, ok := local[key]; ok {
		return chunkResult{parsed: hit}
	}
	if hit, ok := shared.get(key); ok {
		return chunkResult{parsed: hit}
	}

	root, issues := parseChunkLines(reg, c.lines)
	parsed := &parsedChunk{root: root, issues: issues}
	local[key] = parsed
	return chunkResult{parsed: parsed}
}

// parseChunkLines is the per-chunk parse step. It is a variable so chunk
// failures can be injected when exercising the recovery path.
var parseChunkLines = func(reg *markup.KeywordRegistry, lines []string) (*markup.Node, []markup.Issue) {
	p := markup.NewParser(reg)
	root := p.ParseFrom(lines, 1)
	return root, p.Issues()
}

func shiftLines(n *markup.Node, delta int) {
	if delta == 0 {
		return
	}
	n.Line += delta
	for _, child := range n.Children() {
		shiftLines(child, delta)
	}
}
