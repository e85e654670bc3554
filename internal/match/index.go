package match

import (
	"math"
	"sort"

	"github.com/Tweenwrld/basix-marketplace/internal/models"
)

// Index is a TF-IDF model built over the marketplace catalogue. Document
// frequencies come from the catalogue corpus; query texts are vectorized
// against those frequencies so similarity is stable for a given catalogue.
type Index struct {
	matcher *Matcher
	df      map[string]int
	docs    []models.CatalogueDoc
	vectors []map[string]float64
}

// BuildIndex constructs a TF-IDF index from catalogue docs. Docs are
// sorted by ID so iteration order is deterministic regardless of how the
// catalogue was assembled.
func BuildIndex(matcher *Matcher, docs []models.CatalogueDoc) *Index {
	sorted := make([]models.CatalogueDoc, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	idx := &Index{
		matcher: matcher,
		df:      make(map[string]int),
		docs:    sorted,
	}

	termSets := make([]map[string]int, len(sorted))
	for i, doc := range sorted {
		terms := matcher.Tokenize(doc.Text())
		termSets[i] = terms
		for term := range terms {
			idx.df[term]++
		}
	}
	idx.vectors = make([]map[string]float64, len(sorted))
	for i, terms := range termSets {
		idx.vectors[i] = termVector(terms, idx.idf)
	}
	return idx
}

// Docs returns the indexed catalogue docs in deterministic order.
func (idx *Index) Docs() []models.CatalogueDoc {
	return idx.docs
}

// Similarity computes TF-IDF weighted cosine similarity between an
// arbitrary query text and the indexed document at position i.
func (idx *Index) Similarity(query string, i int) float64 {
	if i < 0 || i >= len(idx.vectors) {
		return 0.0
	}
	terms := idx.matcher.Tokenize(query)
	if len(terms) == 0 {
		return 0.0
	}
	return cosine(termVector(terms, idx.idf), idx.vectors[i])
}

// idf uses the smoothed form log(1 + N/df) so single-document corpora
// still yield nonzero weights.
func (idx *Index) idf(term string) float64 {
	df := idx.df[term]
	if df == 0 {
		df = 1
	}
	return math.Log(1.0 + float64(len(idx.docs))/float64(df))
}

// termVector converts term frequencies to a weighted vector. A nil weight
// function means flat weights of 1.
func termVector(terms map[string]int, weight func(string) float64) map[string]float64 {
	vec := make(map[string]float64, len(terms))
	for term, tf := range terms {
		w := 1.0
		if weight != nil {
			w = weight(term)
		}
		vec[term] = float64(tf) * w
	}
	return vec
}

func cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for term, wa := range a {
		normA += wa * wa
		if wb, ok := b[term]; ok {
			dot += wa * wb
		}
	}
	for _, wb := range b {
		normB += wb * wb
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
