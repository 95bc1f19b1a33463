// Package collocation implements the sentence-bounded, sliding-window
// collocation enumerator: a single streaming pass over the corpus that
// emits every co-occurrence of two frequent phrases within windowSize
// tokens of each other, restricted to the same sentence.
//
// Generalizes pkg/server/server.go's request loop shape, a single
// synchronous pass reading one unit of input at a time and emitting one
// response per relevant event, from a stdin/stdout RPC loop to a
// corpus-position sweep feeding a channel.
package collocation

import (
	"context"
	"fmt"

	"github.com/joshua-mt/phrasemine/internal/logger"
	"github.com/joshua-mt/phrasemine/pkg/corpus"
	"github.com/joshua-mt/phrasemine/pkg/phrase"
)

var log = logger.New(logger.StageCollocation)

// Record is one emitted collocation: two frequent-phrase occurrences in
// the same sentence, pos1 <= pos2, pos2-pos1 <= windowSize.
type Record struct {
	Rank1, Rank2 uint16
	Pos1, Pos2   int
	// MinNonterminalSpan is carried through as a configuration tag; the
	// enumerator does not interpret it.
	MinNonterminalSpan int
}

// Params are the enumerator's recognized options.
type Params struct {
	MaxPhraseLength    int
	WindowSize         int
	MinNonterminalSpan int
}

// Validate rejects configuration errors before the pass starts.
func (p Params) Validate() error {
	if p.MaxPhraseLength <= 0 {
		return fmt.Errorf("collocation: maxPhraseLength must be positive, got %d", p.MaxPhraseLength)
	}
	if p.WindowSize < 0 {
		return fmt.Errorf("collocation: windowSize must be >= 0, got %d", p.WindowSize)
	}
	if p.MinNonterminalSpan < 1 {
		return fmt.Errorf("collocation: minNonterminalSpan must be >= 1, got %d", p.MinNonterminalSpan)
	}
	return nil
}

// Result wraps one streamed Record or a terminal error. Exactly one
// Result with a non-nil Err is sent, as the last value before the
// channel closes, if the pass fails partway through.
type Result struct {
	Record Record
	Err    error
}

type windowEntry struct {
	rank  uint16
	start int
}

// Enumerate runs the single-pass sliding-window sweep and streams its
// output on the returned channel. The caller may stop consuming at any
// time; ctx cancellation halts production without materializing the
// remaining records.
func Enumerate(ctx context.Context, c *corpus.Corpus, fp *phrase.FrequentPhrases, rm *phrase.RankMap, params Params) <-chan Result {
	out := make(chan Result)
	go func() {
		defer close(out)
		if err := params.Validate(); err != nil {
			log.Errorf("invalid enumeration params: %v", err)
			out <- Result{Err: err}
			return
		}
		n := c.Length()
		if n == 0 {
			log.Debugf("empty corpus, nothing to enumerate")
			return
		}
		log.Debugf("starting collocation sweep: n=%d windowSize=%d maxPhraseLength=%d", n, params.WindowSize, params.MaxPhraseLength)

		emit := func(a, b windowEntry) bool {
			select {
			case <-ctx.Done():
				return false
			case out <- Result{Record: Record{
				Rank1: a.rank, Rank2: b.rank,
				Pos1: a.start, Pos2: b.start,
				MinNonterminalSpan: params.MinNonterminalSpan,
			}}:
				return true
			}
		}

		var window []windowEntry
		currentSentence := c.SentenceOf(0)
		endOfSentence := c.SentenceStart(currentSentence + 1) // exclusive

		// ageOutTo evicts entries that have fallen more than windowSize
		// tokens behind pos, pairing each against whatever remains in the
		// window at the moment of its eviction. Must run before any new
		// candidate starting at pos is appended, or a stale entry would be
		// paired against an entry further than windowSize away.
		ageOutTo := func(pos int) bool {
			for len(window) > 0 && window[0].start+params.WindowSize < pos {
				oldest := window[0]
				window = window[1:]
				for b := 0; b < len(window); b++ {
					if !emit(oldest, window[b]) {
						return false
					}
				}
			}
			return true
		}

		for p := 0; p < n; p++ {
			// 1. age out entries the current position has outgrown, before
			// this position's own candidates join the window.
			if !ageOutTo(p) {
				return
			}

			// 2. form candidates starting at p, within this sentence.
			maxLen := params.MaxPhraseLength
			for m := 1; m <= maxLen && p+m <= n && p+m <= endOfSentence; m++ {
				candidate := phrase.FromTokens(c.PhraseTokens(p, p+m))
				if freqPhrase, ok := lookup(fp, rm, candidate); ok {
					window = append(window, windowEntry{rank: freqPhrase, start: p})
				}
			}

			if p == endOfSentence-1 {
				// 3. re-age against this final position before the
				// unconditional drain, so every surviving entry is within
				// windowSize of every other before they are all paired.
				if !ageOutTo(p) {
					return
				}
				for a := 0; a < len(window); a++ {
					for b := a + 1; b < len(window); b++ {
						if !emit(window[a], window[b]) {
							return
						}
					}
				}
				window = window[:0]
				currentSentence++
				if currentSentence < c.NumSentences() {
					endOfSentence = c.SentenceStart(currentSentence + 1)
				}
			}
		}
	}()
	return out
}

func lookup(fp *phrase.FrequentPhrases, rm *phrase.RankMap, candidate phrase.Phrase) (uint16, bool) {
	if !fp.Contains(candidate) {
		return 0, false
	}
	return rm.Rank(candidate)
}
