// Package vocab provides the bijective token string <-> token ID mapping
// that sits between plain-text input and the corpus/suffix-array types.
// A Vocabulary is either built from scratch while scanning plain text, or
// loaded from a pre-built binary file through internal/ioformats.
package vocab

import (
	"fmt"
	"strings"

	"github.com/joshua-mt/phrasemine/internal/logger"
	"github.com/joshua-mt/phrasemine/pkg/corpus"
)

// Reserved token IDs. Ordinary vocabulary entries start at FirstOrdinaryID.
const (
	UnknownID       corpus.TokenID = 0
	EndOfSentenceID corpus.TokenID = 1
	FirstOrdinaryID corpus.TokenID = 2
)

var log = logger.New(logger.StageVocab)

// Vocabulary is a bijective mapping between token strings and token IDs.
type Vocabulary struct {
	byID   []string
	byWord map[string]corpus.TokenID
}

// New returns an empty Vocabulary seeded with the reserved entries.
func New() *Vocabulary {
	v := &Vocabulary{
		byID:   []string{"<unk>", "</s>"},
		byWord: map[string]corpus.TokenID{"<unk>": UnknownID, "</s>": EndOfSentenceID},
	}
	return v
}

// Lookup returns the ID for word, inserting a new ordinary entry if word
// has not been seen before.
func (v *Vocabulary) Lookup(word string) corpus.TokenID {
	if id, ok := v.byWord[word]; ok {
		return id
	}
	id := corpus.TokenID(len(v.byID))
	v.byID = append(v.byID, word)
	v.byWord[word] = id
	return id
}

// LookupOnly returns the ID for word without inserting it, reporting
// UnknownID if word is not present.
func (v *Vocabulary) LookupOnly(word string) corpus.TokenID {
	if id, ok := v.byWord[word]; ok {
		return id
	}
	return UnknownID
}

// Word returns the string for id. Out-of-range id is a programming error
// and panics.
func (v *Vocabulary) Word(id corpus.TokenID) string {
	i := int(id)
	if i < 0 || i >= len(v.byID) {
		panic(fmt.Sprintf("vocab: token id %d out of range [0, %d)", id, len(v.byID)))
	}
	return v.byID[i]
}

// Len returns the total number of entries, including the two reserved ones.
func (v *Vocabulary) Len() int { return len(v.byID) }

// Words returns every ordinary entry's string, in ID order (index 0
// corresponds to FirstOrdinaryID).
func (v *Vocabulary) Words() []string {
	return append([]string(nil), v.byID[FirstOrdinaryID:]...)
}

// FromWords rebuilds a Vocabulary from an ordered list of ordinary
// entries, the inverse of Words. Used by internal/ioformats when loading
// a binary vocabulary file.
func FromWords(words []string) *Vocabulary {
	v := New()
	for _, w := range words {
		v.Lookup(w)
	}
	return v
}

// BuildCorpus tokenizes text (one sentence per line, whitespace-separated
// tokens) against v, inserting any new word encountered, and returns the
// resulting corpus.Corpus. Blank lines are skipped.
func BuildCorpus(v *Vocabulary, text string) (*corpus.Corpus, error) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	var tokens []corpus.TokenID
	var sentenceStarts []int
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sentenceStarts = append(sentenceStarts, len(tokens))
		for _, word := range strings.Fields(line) {
			tokens = append(tokens, v.Lookup(word))
		}
	}
	c, err := corpus.New(tokens, sentenceStarts)
	if err != nil {
		log.Errorf("failed to build corpus from text: %v", err)
		return nil, err
	}
	log.Debugf("built corpus: %d tokens, %d sentences, %d vocabulary entries", c.Length(), c.NumSentences(), v.Len())
	return c, nil
}
