// Package store provides the combined vector/full-text review store. The
// engine treats it as an opaque collection with batch-write, vector-search
// and structured-query operations; RedisStore is the production backend and
// MemoryStore serves development and tests.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrBadFilter indicates a filter expression the store rejected.
var ErrBadFilter = errors.New("malformed filter expression")

// Document is one indexed review: content, its embedding and the filterable
// metadata fields. The indexer is the only writer.
type Document struct {
	ID       string
	Content  string
	Vector   []float32
	Metadata map[string]string
	Score    float64
}

// QueryResult is the outcome of a structured query.
type QueryResult struct {
	Total int64
	Docs  []Document
}

// Store is the combined vector/full-text store interface.
type Store interface {
	// WriteBatch writes documents into the named index, creating it with
	// the given field schema if needed. Not idempotent: repeated runs
	// duplicate documents.
	WriteBatch(ctx context.Context, index string, docs []Document, schema Schema) error

	// VectorSearch returns the k nearest documents by vector similarity,
	// ordered best first.
	VectorSearch(ctx context.Context, index string, vector []float32, k int) ([]Document, error)

	// StructuredQuery executes a filter expression and returns the total
	// match count plus a page of matching documents.
	StructuredQuery(ctx context.Context, index string, filter string) (QueryResult, error)
}

// FieldKind classifies an indexed metadata field.
type FieldKind string

const (
	FieldNumeric FieldKind = "numeric"
	FieldText    FieldKind = "text"
	FieldTag     FieldKind = "tag"
)

// Field describes one filterable field of the index.
type Field struct {
	Name     string    `yaml:"name"`
	Kind     FieldKind `yaml:"kind"`
	Sortable bool      `yaml:"sortable,omitempty"`
	NoStem   bool      `yaml:"no_stem,omitempty"`
}

// Schema is the field schema recorded at indexing time. The quantitative
// answerer reads it back so query synthesis always sees the true current
// schema.
type Schema struct {
	Fields []Field `yaml:"fields"`
}

// Field returns the named field, if present.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Save persists the schema descriptor as YAML.
func (s Schema) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write schema file: %w", err)
	}
	return nil
}

// LoadSchema reads a schema descriptor written by Save.
func LoadSchema(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("read schema file: %w", err)
	}
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Schema{}, fmt.Errorf("parse schema file: %w", err)
	}
	return s, nil
}

// ReviewSchema is the field schema for the canonical review index.
func ReviewSchema() Schema {
	return Schema{Fields: []Field{
		{Name: "content", Kind: FieldText},
		{Name: "score", Kind: FieldNumeric, Sortable: true},
		{Name: "likes", Kind: FieldNumeric, Sortable: true},
		{Name: "likes_weighted", Kind: FieldNumeric},
		{Name: "created_date", Kind: FieldText, NoStem: true},
		{Name: "weekday", Kind: FieldTag},
		{Name: "contains_source_word", Kind: FieldTag},
		{Name: "source", Kind: FieldTag},
		{Name: "review_version", Kind: FieldText, NoStem: true},
		{Name: "version", Kind: FieldText, NoStem: true},
	}}
}
