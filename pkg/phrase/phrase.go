// Package phrase implements the frequent-phrase extractor: the
// LCP-interval stack walk (Yamamoto & Church's print_LDIs_stack) that
// enumerates every lcp-delimited substring equivalence class in a single
// sweep, paired with a bounded min-heap that keeps only the top-N most
// frequent phrases, and the rank map built from the result.
//
// The eviction loop generalizes pkg/suggest/cache.go's manual linear
// scan over a map into a container/heap min-heap, and follows
// pkg/suggest/completion.go's frequency-descending sort convention.
package phrase

import (
	"encoding/binary"

	"github.com/joshua-mt/phrasemine/pkg/corpus"
)

// Phrase is an immutable, materialized token-ID sequence. Two phrases are
// equal iff their token sequences are equal.
type Phrase struct {
	tokens []corpus.TokenID
}

// Tokens returns the phrase's token-ID sequence. Callers must not mutate
// the returned slice.
func (p Phrase) Tokens() []corpus.TokenID { return p.tokens }

// Len returns the phrase length in tokens.
func (p Phrase) Len() int { return len(p.tokens) }

func (p Phrase) key() string {
	buf := make([]byte, 4*len(p.tokens))
	for i, id := range p.tokens {
		binary.BigEndian.PutUint32(buf[i*4:], uint32(id))
	}
	return string(buf)
}

func newPhrase(ids []corpus.TokenID) Phrase {
	cp := make([]corpus.TokenID, len(ids))
	copy(cp, ids)
	return Phrase{tokens: cp}
}

// FromTokens builds a Phrase from a token-ID sequence, copying it so the
// result stays valid after the source positions are reused. Exported for
// callers (pkg/collocation, internal/cli) that need to test corpus substrings
// for FrequentPhrases membership.
func FromTokens(ids []corpus.TokenID) Phrase {
	return newPhrase(ids)
}
