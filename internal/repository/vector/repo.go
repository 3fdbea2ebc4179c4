// Package vector persists profile fragments and their embeddings as Redis
// hashes behind an FT HNSW index, and runs KNN queries against them.
package vector

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/twinrag/internal/db"
	"github.com/kailas-cloud/twinrag/internal/domain"
)

const (
	fieldText    = "text"
	fieldTitle   = "title"
	fieldContent = "content"
	fieldVector  = "__vector"

	// fieldVectorAlias is the attribute SearchKNN addresses as @vector;
	// the schema must declare it with AS or every FT.SEARCH fails.
	fieldVectorAlias = "vector"

	// fieldVectorScore is the KNN distance yield field.
	fieldVectorScore = "__vector_score"
)

// store is the consumer interface for vector persistence (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Options carries the HNSW build parameters for EnsureIndex.
type Options struct {
	Dimensions  int
	M           int
	EFConstruct int
}

// Repo implements the vector persistence contracts of the retrieve and
// index usecases. All keys live under a single prefix so one Redis can
// host several twins side by side.
type Repo struct {
	store  store
	prefix string
	opts   Options
}

// New creates a vector repository. prefix is the full key namespace for
// this profile, e.g. "twinrag:profile:".
func New(s store, prefix string, opts Options) *Repo {
	return &Repo{store: s, prefix: prefix, opts: opts}
}

// EnsureIndex creates the FT index if it does not exist yet. Returns true
// when the index was created by this call.
func (r *Repo) EnsureIndex(ctx context.Context) (bool, error) {
	def := &db.IndexDefinition{
		Name:     r.indexName(),
		Prefixes: []string{r.docPrefix()},
		Fields: []db.IndexField{
			{Name: fieldText, Type: db.IndexFieldText},
			{Name: fieldTitle, Type: db.IndexFieldTag},
			{
				Name:              fieldVector,
				Alias:             fieldVectorAlias,
				Type:              db.IndexFieldVector,
				VectorDim:         r.opts.Dimensions,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.opts.M,
				VectorEFConstruct: r.opts.EFConstruct,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return true, nil
}

// Upsert writes records as hashes in a single pipelined round trip.
// Record IDs are flattened profile paths, so re-indexing overwrites in
// place instead of accumulating stale fragments.
func (r *Repo) Upsert(ctx context.Context, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(records))
	for i := range records {
		rec := &records[i]
		fields := map[string]string{
			fieldVector: vectorToBytes(rec.Vector),
		}
		if rec.Meta.Text != "" {
			fields[fieldText] = rec.Meta.Text
		}
		if rec.Meta.Title != "" {
			fields[fieldTitle] = rec.Meta.Title
		}
		if rec.Meta.Content != "" {
			fields[fieldContent] = rec.Meta.Content
		}
		items = append(items, db.HashSetItem{Key: r.docKey(rec.ID), Fields: fields})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %d records: %w", len(records), err)
	}
	return nil
}

// Query runs a KNN search and returns matches ordered by similarity.
func (r *Repo) Query(ctx context.Context, vector []float32, topK int) ([]domain.Match, error) {
	q := &db.KNNQuery{
		IndexName:    r.indexName(),
		Vector:       vector,
		K:            topK,
		// The score yield must be requested explicitly once RETURN is used.
		ReturnFields: []string{fieldText, fieldTitle, fieldContent, fieldVectorScore},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("knn search %s: %w", r.indexName(), err)
	}
	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}

	matches := make([]domain.Match, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		matches = append(matches, domain.Match{
			ID:    strings.TrimPrefix(entry.Key, r.docPrefix()),
			Score: entry.Score,
			Meta: domain.Metadata{
				Text:    entry.Fields[fieldText],
				Title:   entry.Fields[fieldTitle],
				Content: entry.Fields[fieldContent],
			},
		})
	}
	return matches, nil
}

// WriteStamp records which embedder built the index.
func (r *Repo) WriteStamp(ctx context.Context, stamp domain.IndexStamp) error {
	fields := map[string]string{
		"provider":   stamp.Provider,
		"model":      stamp.Model,
		"dimensions": strconv.Itoa(stamp.Dimensions),
	}
	if err := r.store.HSet(ctx, r.stampKey(), fields); err != nil {
		return fmt.Errorf("write index stamp: %w", err)
	}
	return nil
}

// ReadStamp returns the recorded stamp and whether one exists. An index
// built before stamps were introduced simply has none.
func (r *Repo) ReadStamp(ctx context.Context) (domain.IndexStamp, bool, error) {
	fields, err := r.store.HGetAll(ctx, r.stampKey())
	if err != nil {
		return domain.IndexStamp{}, false, fmt.Errorf("read index stamp: %w", err)
	}
	if len(fields) == 0 {
		return domain.IndexStamp{}, false, nil
	}

	dims, _ := strconv.Atoi(fields["dimensions"])
	return domain.IndexStamp{
		Provider:   fields["provider"],
		Model:      fields["model"],
		Dimensions: dims,
	}, true, nil
}

// Count returns the number of stored fragments.
func (r *Repo) Count(ctx context.Context) (int, error) {
	keys, err := r.store.Scan(ctx, r.docPrefix()+"*")
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", r.docPrefix(), err)
	}
	return len(keys), nil
}

func (r *Repo) indexName() string { return r.prefix + "idx" }
func (r *Repo) docPrefix() string { return r.prefix + "doc:" }
func (r *Repo) docKey(id string) string {
	return r.docPrefix() + id
}
func (r *Repo) stampKey() string { return r.prefix + "index:meta" }

// vectorToBytes serializes a []float32 to the little-endian binary string
// FT.SEARCH expects in vector fields.
func vectorToBytes(v []float32) string {
	b := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	return string(b)
}
