package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements Store in process memory. It mirrors RedisStore
// semantics closely enough for development and deterministic tests:
// cosine-ordered vector search and the same filter-expression syntax.
type MemoryStore struct {
	mu      sync.RWMutex
	indexes map[string]*memoryIndex
}

type memoryIndex struct {
	schema Schema
	docs   []memoryDoc
}

type memoryDoc struct {
	doc    Document
	vector []float32 // normalized copy
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{indexes: make(map[string]*memoryIndex)}
}

// WriteBatch appends documents to the named index, creating it on first use.
func (s *MemoryStore) WriteBatch(ctx context.Context, index string, docs []Document, schema Schema) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.indexes[index]
	if !ok {
		idx = &memoryIndex{schema: schema}
		s.indexes[index] = idx
	}

	for _, doc := range docs {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		idx.docs = append(idx.docs, memoryDoc{
			doc:    doc,
			vector: normalize(doc.Vector),
		})
	}
	return nil
}

// VectorSearch returns the k nearest documents by cosine similarity.
func (s *MemoryStore) VectorSearch(ctx context.Context, index string, vector []float32, k int) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.indexes[index]
	if !ok {
		return nil, nil
	}

	query := normalize(vector)

	type scored struct {
		doc   Document
		score float64
	}
	results := make([]scored, 0, len(idx.docs))
	for _, md := range idx.docs {
		if len(md.vector) != len(query) {
			continue
		}
		results = append(results, scored{doc: md.doc, score: dot(query, md.vector)})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if k > len(results) {
		k = len(results)
	}
	out := make([]Document, k)
	for i := 0; i < k; i++ {
		out[i] = results[i].doc
		out[i].Score = results[i].score
	}
	return out, nil
}

// StructuredQuery evaluates a filter expression over the index.
func (s *MemoryStore) StructuredQuery(ctx context.Context, index string, filter string) (QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.indexes[index]
	if !ok {
		return QueryResult{}, nil
	}

	clauses, err := parseFilter(filter)
	if err != nil {
		return QueryResult{}, err
	}

	var result QueryResult
	for _, md := range idx.docs {
		matched, err := matchDoc(md.doc, idx.schema, clauses)
		if err != nil {
			return QueryResult{}, err
		}
		if !matched {
			continue
		}
		result.Total++
		if len(result.Docs) < 10 {
			result.Docs = append(result.Docs, md.doc)
		}
	}
	return result, nil
}

// Count returns the number of documents in an index.
func (s *MemoryStore) Count(index string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx, ok := s.indexes[index]; ok {
		return len(idx.docs)
	}
	return 0
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	var d float64
	for i := range a {
		d += float64(a[i]) * float64(b[i])
	}
	return d
}

func fieldValue(doc Document, field string) (string, bool) {
	if field == "content" {
		return doc.Content, true
	}
	v, ok := doc.Metadata[field]
	return v, ok
}

// matchDoc reports whether all clauses hold for the document.
func matchDoc(doc Document, schema Schema, clauses []clause) (bool, error) {
	for _, cl := range clauses {
		ok, err := cl.match(doc, schema)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (cl clause) match(doc Document, schema Schema) (bool, error) {
	switch cl.kind {
	case clauseTerm:
		return containsFold(doc.Content, cl.value), nil

	case clauseField:
		f, ok := schema.Field(cl.field)
		if !ok {
			return false, fmt.Errorf("%w: unknown field %q", ErrBadFilter, cl.field)
		}
		if f.Kind == FieldNumeric {
			return false, fmt.Errorf("%w: field %q is numeric, use a range", ErrBadFilter, cl.field)
		}
		v, present := fieldValue(doc, cl.field)
		if !present {
			return false, nil
		}
		return matchText(v, cl.value), nil

	case clauseRange:
		f, ok := schema.Field(cl.field)
		if !ok {
			return false, fmt.Errorf("%w: unknown field %q", ErrBadFilter, cl.field)
		}
		if f.Kind != FieldNumeric {
			return false, fmt.Errorf("%w: field %q is not numeric", ErrBadFilter, cl.field)
		}
		raw, present := fieldValue(doc, cl.field)
		if !present {
			return false, nil
		}
		v, err := parseNumber(raw)
		if err != nil {
			return false, nil
		}
		return v >= cl.low && v <= cl.high, nil
	}
	return false, fmt.Errorf("%w: unhandled clause", ErrBadFilter)
}

var _ Store = (*MemoryStore)(nil)
