package ml

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrEmptyVocabulary is returned when no document contributes a usable term.
var ErrEmptyVocabulary = errors.New("empty vocabulary: documents contain only stop words")

// TFIDFVectorizer turns a corpus into L2-normalized TF-IDF rows using smoothed idf:
//
//	idf(t) = ln((1 + n) / (1 + df(t))) + 1
type TFIDFVectorizer struct {
	tokenizer  *Tokenizer
	vocabulary map[string]int
	idf        []float64
}

func NewTFIDFVectorizer(tokenizer *Tokenizer) *TFIDFVectorizer {
	if tokenizer == nil {
		tokenizer = NewTokenizer()
	}
	return &TFIDFVectorizer{tokenizer: tokenizer}
}

// Vocabulary returns the fitted terms in column order.
func (v *TFIDFVectorizer) Vocabulary() []string {
	terms := make([]string, len(v.vocabulary))
	for term, col := range v.vocabulary {
		terms[col] = term
	}
	return terms
}

// FitTransform learns the vocabulary and idf weights from docs and returns one row per
// document, in input order.
func (v *TFIDFVectorizer) FitTransform(docs []string) (*mat.Dense, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("fit tfidf: no documents")
	}

	tokenized := make([][]string, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		tokens := v.tokenizer.Tokenize(doc)
		tokenized[i] = tokens

		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	if len(df) == 0 {
		return nil, ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	n := float64(len(docs))
	for col, term := range terms {
		v.vocabulary[term] = col
		v.idf[col] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	x := mat.NewDense(len(docs), len(terms), nil)
	row := make([]float64, len(terms))
	for i, tokens := range tokenized {
		for j := range row {
			row[j] = 0
		}
		for _, tok := range tokens {
			row[v.vocabulary[tok]]++
		}
		floats.Mul(row, v.idf)
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
		}
		x.SetRow(i, row)
	}

	return x, nil
}

// CosineSimilarity returns the symmetric matrix of pairwise cosine similarities between
// the rows of x. Rows must already be L2-normalized, so the table is x·xᵀ. Values are
// clamped to [0, 1] to absorb rounding drift on the diagonal.
func CosineSimilarity(x mat.Matrix) *mat.SymDense {
	r, _ := x.Dims()
	sim := mat.NewSymDense(r, nil)
	sim.SymOuterK(1, x)

	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			s := sim.At(i, j)
			if s > 1 {
				sim.SetSym(i, j, 1)
			} else if s < 0 {
				sim.SetSym(i, j, 0)
			}
		}
	}
	return sim
}
