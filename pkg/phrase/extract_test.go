package phrase

import (
	"testing"

	"github.com/joshua-mt/phrasemine/pkg/corpus"
	"github.com/joshua-mt/phrasemine/pkg/sarray"
)

func build(t *testing.T, ids []int32, starts []int, maxCmp int) (*corpus.Corpus, *sarray.SuffixArray, *sarray.LCP) {
	t.Helper()
	tokens := make([]corpus.TokenID, len(ids))
	for i, id := range ids {
		tokens[i] = corpus.TokenID(id)
	}
	c, err := corpus.New(tokens, starts)
	if err != nil {
		t.Fatalf("corpus.New: %v", err)
	}
	sa, err := sarray.Build(c, maxCmp)
	if err != nil {
		t.Fatalf("sarray.Build: %v", err)
	}
	lcp, err := sarray.BuildLCP(c, sa)
	if err != nil {
		t.Fatalf("sarray.BuildLCP: %v", err)
	}
	return c, sa, lcp
}

func phraseString(p Phrase) string {
	s := ""
	for i, t := range p.Tokens() {
		if i > 0 {
			s += " "
		}
		switch t {
		case 1:
			s += "a"
		case 2:
			s += "b"
		case 3:
			s += "c"
		default:
			s += "?"
		}
	}
	return s
}

// TestScenarioA: corpus = [a b a b a], one sentence, minFrequency=2,
// maxPhrases=5, maxPhraseLength=2. Expected frequency-descending order:
// a:3, b:2, "a b":2, "b a":2.
func TestScenarioA(t *testing.T) {
	c, sa, lcp := build(t, []int32{1, 2, 1, 2, 1}, []int{0}, sarray.DefaultMaxCmp)
	fp, rm, err := Extract(c, sa, lcp, Params{MinFrequency: 2, MaxPhrases: 5, MaxPhraseLength: 2})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if fp.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", fp.Len())
	}
	wantFreq := map[string]int{"a": 3, "b": 2, "a b": 2, "b a": 2}
	seen := map[string]bool{}
	for i := 0; i < fp.Len(); i++ {
		p, freq := fp.At(i)
		s := phraseString(p)
		want, ok := wantFreq[s]
		if !ok {
			t.Errorf("unexpected phrase %q in result", s)
			continue
		}
		if freq != want {
			t.Errorf("phrase %q frequency = %d, want %d", s, freq, want)
		}
		seen[s] = true
	}
	for s := range wantFreq {
		if !seen[s] {
			t.Errorf("expected phrase %q missing from result", s)
		}
	}
	// "a" must outrank "b" (strictly more frequent).
	rankA, ok := rm.Rank(mkPhrase(1))
	if !ok {
		t.Fatal("phrase 'a' not ranked")
	}
	rankB, ok := rm.Rank(mkPhrase(2))
	if !ok {
		t.Fatal("phrase 'b' not ranked")
	}
	if rankA >= rankB {
		t.Errorf("rank(a)=%d should be < rank(b)=%d (a is more frequent)", rankA, rankB)
	}
}

func mkPhrase(ids ...int32) Phrase {
	tokens := make([]corpus.TokenID, len(ids))
	for i, id := range ids {
		tokens[i] = corpus.TokenID(id)
	}
	return newPhrase(tokens)
}

// TestScenarioB: corpus = [a b c][a b c], minFrequency=2, maxPhraseLength=3.
// No phrase may cross the sentence boundary.
func TestScenarioB(t *testing.T) {
	c, sa, lcp := build(t, []int32{1, 2, 3, 1, 2, 3}, []int{0, 3}, sarray.DefaultMaxCmp)
	fp, _, err := Extract(c, sa, lcp, Params{MinFrequency: 2, MaxPhrases: 100, MaxPhraseLength: 3})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	wantFreq := map[string]int{"a": 2, "b": 2, "c": 2, "a b": 2, "b c": 2, "a b c": 2}
	if fp.Len() != len(wantFreq) {
		got := []string{}
		for i := 0; i < fp.Len(); i++ {
			p, _ := fp.At(i)
			got = append(got, phraseString(p))
		}
		t.Fatalf("Len() = %d, want %d; got phrases %v", fp.Len(), len(wantFreq), got)
	}
	for i := 0; i < fp.Len(); i++ {
		p, freq := fp.At(i)
		s := phraseString(p)
		want, ok := wantFreq[s]
		if !ok {
			t.Errorf("unexpected phrase %q (crosses sentence boundary?)", s)
			continue
		}
		if freq != want {
			t.Errorf("phrase %q frequency = %d, want %d", s, freq, want)
		}
	}
}

// TestScenarioD: empty corpus yields empty FrequentPhrases and no error.
func TestScenarioD(t *testing.T) {
	c, sa, lcp := build(t, nil, nil, sarray.DefaultMaxCmp)
	fp, rm, err := Extract(c, sa, lcp, Params{MinFrequency: 1, MaxPhrases: 10, MaxPhraseLength: 3})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if fp.Len() != 0 {
		t.Errorf("Len() = %d, want 0", fp.Len())
	}
	if rm.Len() != 0 {
		t.Errorf("RankMap.Len() = %d, want 0", rm.Len())
	}
}

// TestScenarioE: maxPhraseLength > MAX_CMP is a configuration error,
// rejected before the sweep starts.
func TestScenarioE(t *testing.T) {
	c, sa, lcp := build(t, []int32{1, 2, 3}, []int{0}, 2)
	_, _, err := Extract(c, sa, lcp, Params{MinFrequency: 1, MaxPhrases: 10, MaxPhraseLength: 5})
	if err == nil {
		t.Fatal("expected configuration error for maxPhraseLength > MAX_CMP")
	}
}

// TestBoundaryAllSubstrings: setting maxPhrases to the number of distinct
// contiguous in-sentence substrings of length <= maxPhraseLength should
// yield a FrequentPhrases containing every one of them.
func TestBoundaryAllSubstrings(t *testing.T) {
	ids := []int32{1, 2, 1, 3}
	c, sa, lcp := build(t, ids, []int{0}, sarray.DefaultMaxCmp)
	maxLen := 2
	distinct := map[string]bool{}
	for start := 0; start < len(ids); start++ {
		for m := 1; m <= maxLen && start+m <= len(ids); m++ {
			s := ""
			for _, id := range ids[start : start+m] {
				if s != "" {
					s += ","
				}
				s += string(rune('0' + id))
			}
			distinct[s] = true
		}
	}
	fp, _, err := Extract(c, sa, lcp, Params{MinFrequency: 1, MaxPhrases: len(distinct), MaxPhraseLength: maxLen})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if fp.Len() != len(distinct) {
		t.Fatalf("Len() = %d, want %d (all distinct substrings)", fp.Len(), len(distinct))
	}
}

// TestSingleRepeatedToken: a single sentence of one token repeated N
// times, maxPhraseLength=1, yields one frequent phrase with frequency N.
func TestSingleRepeatedToken(t *testing.T) {
	const n = 20
	ids := make([]int32, n)
	for i := range ids {
		ids[i] = 7
	}
	c, sa, lcp := build(t, ids, []int{0}, sarray.DefaultMaxCmp)
	fp, _, err := Extract(c, sa, lcp, Params{MinFrequency: 1, MaxPhrases: 5, MaxPhraseLength: 1})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if fp.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", fp.Len())
	}
	_, freq := fp.At(0)
	if freq != n {
		t.Errorf("frequency = %d, want %d", freq, n)
	}
}

// TestIdempotent: running the extractor twice on identical inputs
// produces identical results.
func TestIdempotent(t *testing.T) {
	c, sa, lcp := build(t, []int32{1, 2, 1, 2, 1, 3, 2, 1}, []int{0}, sarray.DefaultMaxCmp)
	params := Params{MinFrequency: 1, MaxPhrases: 8, MaxPhraseLength: 3}
	fp1, _, err := Extract(c, sa, lcp, params)
	if err != nil {
		t.Fatalf("Extract (1st): %v", err)
	}
	fp2, _, err := Extract(c, sa, lcp, params)
	if err != nil {
		t.Fatalf("Extract (2nd): %v", err)
	}
	if fp1.Len() != fp2.Len() {
		t.Fatalf("Len() differs between runs: %d vs %d", fp1.Len(), fp2.Len())
	}
	for i := 0; i < fp1.Len(); i++ {
		p1, f1 := fp1.At(i)
		p2, f2 := fp2.At(i)
		if phraseString(p1) != phraseString(p2) || f1 != f2 {
			t.Errorf("entry %d differs: (%q,%d) vs (%q,%d)", i, phraseString(p1), f1, phraseString(p2), f2)
		}
	}
}

// TestInvalidParams covers the remaining configuration-error cases.
func TestInvalidParams(t *testing.T) {
	c, sa, lcp := build(t, []int32{1, 2, 3}, []int{0}, sarray.DefaultMaxCmp)
	cases := []Params{
		{MinFrequency: 1, MaxPhrases: 0, MaxPhraseLength: 2},
		{MinFrequency: 1, MaxPhrases: 40000, MaxPhraseLength: 2},
		{MinFrequency: 1, MaxPhrases: 5, MaxPhraseLength: 0},
	}
	for _, params := range cases {
		if _, _, err := Extract(c, sa, lcp, params); err == nil {
			t.Errorf("Extract(%+v) expected configuration error, got nil", params)
		}
	}
}
