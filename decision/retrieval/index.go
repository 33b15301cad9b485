// Package retrieval ranks product and knowledge text against a free-text query
// using TF-IDF weighted cosine similarity.
package retrieval

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/catalog"
)

// Document is one retrievable unit of text.
type Document struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Snippet is a scored search hit.
type Snippet struct {
	Text     string  `json:"text"`
	SourceID string  `json:"source_id"`
	Score    float64 `json:"score"`
}

// ProductDocID is the document id used for a catalog product.
func ProductDocID(sku string) string {
	return "products#" + sku
}

// ProductText renders a product as labeled lines for indexing.
func ProductText(p catalog.Product) string {
	return fmt.Sprintf("SKU: %s\nName: %s\nFeatures: %s\nBenefits: %s\nCategory: %s\nPrereqs: %s",
		p.SKU, p.Name, p.Features, p.Benefits, p.Category, p.Prereqs)
}

// Builder accumulates documents. It is not safe for concurrent use.
type Builder struct {
	docs   []Document
	logger zerolog.Logger
}

func NewBuilder(logger zerolog.Logger) *Builder {
	return &Builder{logger: logger}
}

// AddProducts adds one document per product, in catalog order.
func (b *Builder) AddProducts(products []catalog.Product) *Builder {
	for _, p := range products {
		b.docs = append(b.docs, Document{ID: ProductDocID(p.SKU), Text: ProductText(p)})
	}
	return b
}

// AddDocuments appends documents in the given order.
func (b *Builder) AddDocuments(docs ...Document) *Builder {
	b.docs = append(b.docs, docs...)
	return b
}

// Build freezes the corpus into an immutable index.
func (b *Builder) Build() (*Index, error) {
	tok, err := NewTokenizer()
	if err != nil {
		return nil, fmt.Errorf("failed to load stop words: %w", err)
	}

	docs := make([]Document, len(b.docs))
	copy(docs, b.docs)

	tokens := make([][]string, len(docs))
	df := make(map[string]int)
	for i, d := range docs {
		tokens[i] = tok.Tokens(d.Text)
		seen := make(map[string]struct{}, len(tokens[i]))
		for _, t := range tokens[i] {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(docs))
	for i, t := range terms {
		vocab[t] = i
		idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}

	idx := &Index{
		docs:      docs,
		vocab:     vocab,
		idf:       idf,
		tokenizer: tok,
		vectors:   make([][]float64, len(docs)),
	}
	for i := range docs {
		idx.vectors[i] = idx.vectorize(tokens[i])
	}

	b.logger.Debug().Int("documents", len(docs)).Int("terms", len(terms)).Msg("Built retrieval index")
	return idx, nil
}

// Index is an immutable TF-IDF index. Safe for concurrent readers.
type Index struct {
	docs      []Document
	vectors   [][]float64
	vocab     map[string]int
	idf       []float64
	tokenizer *Tokenizer
}

// vectorize returns the l2-normalized tf-idf vector. Unknown terms are ignored.
func (x *Index) vectorize(tokens []string) []float64 {
	vec := make([]float64, len(x.idf))
	for _, t := range tokens {
		if i, ok := x.vocab[t]; ok {
			vec[i]++
		}
	}
	for i := range vec {
		if vec[i] != 0 {
			vec[i] *= x.idf[i]
		}
	}
	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec
}

// Search returns up to k documents by descending cosine similarity. Ties keep
// corpus order. A blank query or k <= 0 returns an empty result.
func (x *Index) Search(query string, k int) []Snippet {
	if k <= 0 || strings.TrimSpace(query) == "" || len(x.docs) == 0 {
		return []Snippet{}
	}

	q := x.vectorize(x.tokenizer.Tokens(query))

	type scored struct {
		pos   int
		score float64
	}
	ranked := make([]scored, len(x.docs))
	for i, v := range x.vectors {
		ranked[i] = scored{pos: i, score: floats.Dot(q, v)}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]Snippet, 0, k)
	for _, r := range ranked[:k] {
		d := x.docs[r.pos]
		out = append(out, Snippet{Text: d.Text, SourceID: d.ID, Score: r.score})
	}
	return out
}

// Len is the number of indexed documents.
func (x *Index) Len() int { return len(x.docs) }

// Documents returns a copy of the corpus in index order.
func (x *Index) Documents() []Document {
	out := make([]Document, len(x.docs))
	copy(out, x.docs)
	return out
}
