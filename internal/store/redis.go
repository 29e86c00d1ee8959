package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a Redis instance with the RediSearch
// module. Concurrent readers are safe; bulk writes are expected to come
// from a single indexing run per index name.
type RedisStore struct {
	client *redis.Client
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// NewRedisStore creates a Redis-backed store and verifies connectivity.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{client: client}, nil
}

const vectorField = "embedding"

// WriteBatch creates the index if missing and writes document hashes.
func (s *RedisStore) WriteBatch(ctx context.Context, index string, docs []Document, schema Schema) error {
	if len(docs) == 0 {
		return nil
	}

	if err := s.ensureIndex(ctx, index, schema, len(docs[0].Vector)); err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	for _, doc := range docs {
		id := doc.ID
		if id == "" {
			id = uuid.NewString()
		}

		fields := make(map[string]interface{}, len(doc.Metadata)+2)
		fields["content"] = doc.Content
		fields[vectorField] = encodeVector(doc.Vector)
		for k, v := range doc.Metadata {
			fields[k] = v
		}

		pipe.HSet(ctx, index+":"+id, fields)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write batch: %w", err)
	}
	return nil
}

// ensureIndex issues FT.CREATE, tolerating an already-existing index.
func (s *RedisStore) ensureIndex(ctx context.Context, index string, schema Schema, dim int) error {
	fields := make([]*redis.FieldSchema, 0, len(schema.Fields)+1)
	for _, f := range schema.Fields {
		fs := &redis.FieldSchema{FieldName: f.Name, Sortable: f.Sortable}
		switch f.Kind {
		case FieldNumeric:
			fs.FieldType = redis.SearchFieldTypeNumeric
		case FieldTag:
			fs.FieldType = redis.SearchFieldTypeTag
		default:
			fs.FieldType = redis.SearchFieldTypeText
			fs.NoStem = f.NoStem
		}
		fields = append(fields, fs)
	}

	fields = append(fields, &redis.FieldSchema{
		FieldName: vectorField,
		FieldType: redis.SearchFieldTypeVector,
		VectorArgs: &redis.FTVectorArgs{
			FlatOptions: &redis.FTFlatOptions{
				Type:           "FLOAT32",
				Dim:            dim,
				DistanceMetric: "COSINE",
			},
		},
	})

	err := s.client.FTCreate(ctx, index, &redis.FTCreateOptions{
		OnHash: true,
		Prefix: []interface{}{index + ":"},
	}, fields...).Err()
	if err != nil && !strings.Contains(err.Error(), "Index already exists") {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	return nil
}

// VectorSearch runs a KNN query ordered by vector distance.
func (s *RedisStore) VectorSearch(ctx context.Context, index string, vector []float32, k int) ([]Document, error) {
	query := fmt.Sprintf("*=>[KNN %d @%s $vec AS vector_score]", k, vectorField)

	res, err := s.client.FTSearchWithArgs(ctx, index, query, &redis.FTSearchOptions{
		SortBy:         []redis.FTSearchSortBy{{FieldName: "vector_score", Asc: true}},
		LimitOffset:    0,
		Limit:          k,
		DialectVersion: 2,
		Params:         map[string]interface{}{"vec": encodeVector(vector)},
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	docs := make([]Document, 0, len(res.Docs))
	for _, d := range res.Docs {
		docs = append(docs, decodeDoc(index, d))
	}
	return docs, nil
}

// StructuredQuery executes a filter expression and returns the total match
// count plus the first page of matches.
func (s *RedisStore) StructuredQuery(ctx context.Context, index string, filter string) (QueryResult, error) {
	res, err := s.client.FTSearchWithArgs(ctx, index, filter, &redis.FTSearchOptions{
		LimitOffset:    0,
		Limit:          10,
		DialectVersion: 2,
	}).Result()
	if err != nil {
		// RediSearch syntax faults surface here; callers treat them as
		// a rejected filter rather than infrastructure failure.
		return QueryResult{}, fmt.Errorf("%w: %v", ErrBadFilter, err)
	}

	out := QueryResult{Total: int64(res.Total)}
	for _, d := range res.Docs {
		out.Docs = append(out.Docs, decodeDoc(index, d))
	}
	return out, nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// decodeDoc converts a search hit into a Document.
func decodeDoc(index string, d redis.Document) Document {
	doc := Document{
		ID:       strings.TrimPrefix(d.ID, index+":"),
		Metadata: make(map[string]string, len(d.Fields)),
	}

	for k, v := range d.Fields {
		switch k {
		case "content":
			doc.Content = v
		case vectorField:
			// Raw vector bytes are not surfaced to callers.
		case "vector_score":
			if dist, err := strconv.ParseFloat(v, 64); err == nil {
				doc.Score = 1 - dist
			}
		default:
			doc.Metadata[k] = v
		}
	}
	return doc
}

// encodeVector serializes float32s little-endian, the layout RediSearch
// expects for FLOAT32 vector fields.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(x))
	}
	return buf
}

var _ Store = (*RedisStore)(nil)
