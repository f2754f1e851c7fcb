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

package highlight

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// markOpen and markClose wrap highlighted term occurrences.
const (
	markOpen  = "<mark>"
	markClose = "</mark>"
)

// Highlight wraps term occurrences in the fragment's text content with
// <mark> tags. The fragment is tokenized as HTML so existing markup passes
// through untouched: tag names, attribute values and entities are never
// wrapped, only visible text. Matching is case-insensitive.
//
// Terms are combined into one alternation, longest first, so overlapping
// terms produce a single non-nested mark per occurrence.
func Highlight(fragment string, terms []string) string {
	re := termPattern(terms)
	if re == nil || fragment == "" {
		return fragment
	}

	var out bytes.Buffer
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// EOF, or malformed markup: emit whatever remains unmodified.
			out.Write(z.Raw())
			break
		}
		if tt != html.TextToken {
			out.Write(z.Raw())
			continue
		}
		// Raw keeps entities as written; the pattern matches the decoded
		// form only when it appears literally, which is the safe subset.
		text := string(z.Raw())
		out.WriteString(re.ReplaceAllStringFunc(text, func(m string) string {
			return markOpen + m + markClose
		}))
	}
	return out.String()
}

// Text reduces an HTML fragment to its visible text content. Tags are
// dropped and entities decoded. Used before snippet extraction so a preview
// window never cuts through markup.
func Text(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}
	var out strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return out.String()
		case html.TextToken:
			out.Write(z.Text())
		}
	}
}

// termPattern builds the combined case-insensitive alternation, or nil when
// no usable term exists.
func termPattern(terms []string) *regexp.Regexp {
	cleaned := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	// Longest first, so "foobar" wins over "foo" at the same position.
	sort.SliceStable(cleaned, func(i, j int) bool { return len(cleaned[i]) > len(cleaned[j]) })
	quoted := make([]string, len(cleaned))
	for i, t := range cleaned {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(quoted, "|"))
}
