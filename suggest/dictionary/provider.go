// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dictionary proposes near-spellings of query terms from a fixed
// vocabulary, typically the indexed corpus terms, scored by Jaro-Winkler
// similarity.
package dictionary

import (
	"context"
	"sort"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/poiesic/boardsearch/suggest"
)

// Jaro-Winkler parameters: standard boost threshold and prefix size.
const (
	boostThreshold = 0.7
	prefixSize     = 4
)

// Provider is a vocabulary-backed suggestion provider.
type Provider struct {
	vocab         []string
	minSimilarity float64
}

// NewProvider creates a dictionary provider over the given vocabulary.
// Words are lower-cased and deduplicated. The similarity cutoff comes from
// the config.
func NewProvider(vocab []string, config *suggest.Config) (*Provider, error) {
	if config == nil {
		config = suggest.DefaultConfig()
	}
	seen := make(map[string]bool, len(vocab))
	words := make([]string, 0, len(vocab))
	for _, w := range vocab {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	if len(words) == 0 {
		return nil, suggest.ErrEmptyVocabulary
	}
	sort.Strings(words)
	return &Provider{vocab: words, minSimilarity: config.MinSimilarity}, nil
}

// Alternatives returns the best vocabulary near-match of each term, ordered
// by similarity. Terms already in the vocabulary produce nothing; they are
// spelled fine.
func (p *Provider) Alternatives(ctx context.Context, terms []string) ([]string, error) {
	type scored struct {
		word  string
		score float64
	}
	var candidates []scored
	for _, term := range terms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		term = strings.ToLower(term)
		best, bestScore := "", 0.0
		exact := false
		for _, w := range p.vocab {
			if w == term {
				exact = true
				break
			}
			if s := smetrics.JaroWinkler(term, w, boostThreshold, prefixSize); s > bestScore {
				best, bestScore = w, s
			}
		}
		if exact || bestScore < p.minSimilarity {
			continue
		}
		candidates = append(candidates, scored{word: best, score: bestScore})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.word)
	}
	return out, nil
}
