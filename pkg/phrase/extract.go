package phrase

import (
	"fmt"

	"github.com/joshua-mt/phrasemine/internal/logger"
	"github.com/joshua-mt/phrasemine/pkg/corpus"
	"github.com/joshua-mt/phrasemine/pkg/sarray"
)

var log = logger.New(logger.StagePhrase)

// Params are the extractor's recognized options.
type Params struct {
	MinFrequency    int
	MaxPhrases      int
	MaxPhraseLength int
}

// Validate rejects configuration errors, checked before the sweep
// starts.
func (p Params) Validate(maxCmp int) error {
	if p.MaxPhrases <= 0 || p.MaxPhrases > 32767 {
		return fmt.Errorf("phrase: maxPhrases must be in [1, 32767], got %d", p.MaxPhrases)
	}
	if p.MaxPhraseLength <= 0 {
		return fmt.Errorf("phrase: maxPhraseLength must be positive, got %d", p.MaxPhraseLength)
	}
	if p.MaxPhraseLength > maxCmp {
		return fmt.Errorf("phrase: maxPhraseLength %d exceeds MAX_CMP %d", p.MaxPhraseLength, maxCmp)
	}
	return nil
}

// effectiveMinFrequency clamps minFrequency to 1; values below 1 are
// meaningless.
func (p Params) effectiveMinFrequency() int {
	if p.MinFrequency < 1 {
		return 1
	}
	return p.MinFrequency
}

// Extract runs the LCP-interval stack sweep and returns the resulting
// FrequentPhrases and its RankMap. An empty corpus yields an empty
// FrequentPhrases, not an error.
func Extract(c *corpus.Corpus, sa *sarray.SuffixArray, lcp *sarray.LCP, params Params) (*FrequentPhrases, *RankMap, error) {
	if err := params.Validate(sa.MaxCmp()); err != nil {
		log.Errorf("invalid extraction params: %v", err)
		return nil, nil, err
	}
	n := sa.Size()
	if c.Length() != n {
		err := fmt.Errorf("phrase: corpus length %d does not match suffix array size %d", c.Length(), n)
		log.Errorf("%v", err)
		return nil, nil, err
	}

	top := newTopN(params.MaxPhrases)
	minFreq := params.effectiveMinFrequency()

	if n > 0 {
		startStack := []int{0}
		silStack := []int{0}

		record := func(i, j, k int) {
			recordClass(c, sa, lcp, i, j, k, minFreq, params.MaxPhraseLength, top)
		}

		for j := 0; j < n; j++ {
			// 1. trivial interval <j, j>.
			record(j, j, 0)

			// 2. pop and emit every non-trivial interval this position closes.
			for lcp.At(j+1) < lcp.At(silStack[len(silStack)-1]) {
				i := startStack[len(startStack)-1]
				startStack = startStack[:len(startStack)-1]
				k := silStack[len(silStack)-1]
				silStack = silStack[:len(silStack)-1]
				record(i, j, k)
			}

			// 3. push the current top as the new interval's start witness.
			startStack = append(startStack, silStack[len(silStack)-1])
			silStack = append(silStack, j+1)
		}
	}

	fp, rm, err := buildResult(top)
	if err == nil {
		log.Debugf("extracted %d frequent phrases (minFreq=%d, maxLen=%d)", fp.Len(), minFreq, params.MaxPhraseLength)
	}
	return fp, rm, err
}

// recordClass is the class recorder for the LCP-delimited interval
// <i, j> with SIL witness index k.
func recordClass(c *corpus.Corpus, sa *sarray.SuffixArray, lcp *sarray.LCP, i, j, k int, minFreq, maxLen int, top *topN) {
	lbl := lcp.At(i)
	if r := lcp.At(j + 1); r > lbl {
		lbl = r
	}
	start := sa.SA(i)
	s := c.SentenceOf(start)
	endOfSent := c.SentenceStart(s + 1)

	if i == j {
		if minFreq > 1 {
			return
		}
		for m := lbl + 1; m <= maxLen && start+m <= endOfSent; m++ {
			top.insert(newPhrase(c.PhraseTokens(start, start+m)), 1)
		}
		return
	}

	sil := lcp.At(k)
	if lbl >= sil {
		return
	}
	freq := j - i + 1
	if freq < minFreq {
		return
	}
	for m := lbl + 1; m <= maxLen && m <= sil && start+m <= endOfSent; m++ {
		top.insert(newPhrase(c.PhraseTokens(start, start+m)), freq)
	}
}

func buildResult(top *topN) (*FrequentPhrases, *RankMap, error) {
	drained := top.drain()
	fp := &FrequentPhrases{
		phrases: make([]Phrase, 0, len(drained)),
		freqs:   make([]int, 0, len(drained)),
		index:   make(map[string]int, len(drained)),
	}
	for _, e := range drained {
		key := e.phrase.key()
		if _, dup := fp.index[key]; dup {
			continue
		}
		fp.index[key] = len(fp.phrases)
		fp.phrases = append(fp.phrases, e.phrase)
		fp.freqs = append(fp.freqs, e.freq)
	}
	return fp, NewRankMap(fp), nil
}
