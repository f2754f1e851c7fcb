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

package suggest

import (
	"context"
	"log/slog"
	"strings"
)

// Advisor chains suggestion providers and merges their proposals into one
// deduplicated, capped list. Providers are consulted in registration order,
// so put the cheapest first. A failing provider is logged and skipped.
type Advisor struct {
	providers []Provider
	max       int
	logger    *slog.Logger
}

// NewAdvisor creates an Advisor over the given providers. A max <= 0
// defaults to the DefaultConfig cap.
func NewAdvisor(max int, logger *slog.Logger, providers ...Provider) (*Advisor, error) {
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}
	if max <= 0 {
		max = DefaultConfig().MaxSuggestions
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Advisor{providers: providers, max: max, logger: logger}, nil
}

// Suggest returns alternative terms for a fruitless query. Proposals that
// merely repeat an original term are dropped.
func (a *Advisor) Suggest(ctx context.Context, terms []string) ([]string, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	original := make(map[string]bool, len(terms))
	for _, t := range terms {
		original[strings.ToLower(t)] = true
	}

	seen := make(map[string]bool)
	var merged []string
	for _, p := range a.providers {
		if len(merged) >= a.max {
			break
		}
		alts, err := p.Alternatives(ctx, terms)
		if err != nil {
			a.logger.Warn("suggestion provider failed", "err", err)
			continue
		}
		for _, alt := range alts {
			alt = strings.ToLower(strings.TrimSpace(alt))
			if alt == "" || original[alt] || seen[alt] {
				continue
			}
			seen[alt] = true
			merged = append(merged, alt)
			if len(merged) >= a.max {
				break
			}
		}
	}
	return merged, nil
}
