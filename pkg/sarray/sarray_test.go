package sarray

import (
	"testing"

	"github.com/joshua-mt/phrasemine/pkg/corpus"
)

func mkCorpus(t *testing.T, ids []int32, starts []int) *corpus.Corpus {
	t.Helper()
	tokens := make([]corpus.TokenID, len(ids))
	for i, id := range ids {
		tokens[i] = corpus.TokenID(id)
	}
	c, err := corpus.New(tokens, starts)
	if err != nil {
		t.Fatalf("corpus.New: %v", err)
	}
	return c
}

func TestBuildSuffixArrayMatchesBruteForce(t *testing.T) {
	// "banana" over a tiny alphabet, encoded as token IDs 1..3.
	// b=1 a=2 n=3
	ids := []int32{1, 2, 3, 2, 3, 2}
	c := mkCorpus(t, ids, []int{0})

	sa, err := Build(c, DefaultMaxCmp)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if sa.Size() != len(ids) {
		t.Fatalf("Size() = %d, want %d", sa.Size(), len(ids))
	}

	// Verify sorted order directly: for consecutive i, suffix(SA[i-1]) <= suffix(SA[i]).
	lessOrEqual := func(a, b int) bool {
		for k := 0; ; k++ {
			ea, eb := a+k >= len(ids), b+k >= len(ids)
			if ea && eb {
				return true
			}
			if ea {
				return true
			}
			if eb {
				return false
			}
			if ids[a+k] != ids[b+k] {
				return ids[a+k] < ids[b+k]
			}
		}
	}
	for i := 1; i < sa.Size(); i++ {
		if !lessOrEqual(sa.SA(i-1), sa.SA(i)) {
			t.Errorf("suffix array not sorted at i=%d: SA[i-1]=%d SA[i]=%d", i, sa.SA(i-1), sa.SA(i))
		}
	}
}

func TestNewRejectsNonPermutation(t *testing.T) {
	if _, err := New([]int{0, 0, 2}, DefaultMaxCmp); err == nil {
		t.Fatal("expected error for repeated entry")
	}
	if _, err := New([]int{0, 1, 5}, DefaultMaxCmp); err == nil {
		t.Fatal("expected error for out-of-range entry")
	}
	if _, err := New([]int{0, 1, 2}, 0); err == nil {
		t.Fatal("expected error for non-positive MAX_CMP")
	}
}

func TestBuildLCPSentinelsAndValues(t *testing.T) {
	// corpus: a b a b a  (one sentence)
	ids := []int32{10, 11, 10, 11, 10}
	c := mkCorpus(t, ids, []int{0})
	sa, err := Build(c, DefaultMaxCmp)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	lcp, err := BuildLCP(c, sa)
	if err != nil {
		t.Fatalf("BuildLCP: %v", err)
	}
	if lcp.At(0) != 0 {
		t.Errorf("L[0] = %d, want 0", lcp.At(0))
	}
	if lcp.At(lcp.Len()-1) != 0 {
		t.Errorf("L[N] = %d, want 0", lcp.At(lcp.Len()-1))
	}
	for i := 0; i < lcp.Len(); i++ {
		if lcp.At(i) < 0 {
			t.Errorf("L[%d] = %d, want >= 0", i, lcp.At(i))
		}
	}
}

func TestBuildLCPClampsToMaxCmp(t *testing.T) {
	// a repeated many times; LCP would be huge without a clamp.
	ids := make([]int32, 50)
	for i := range ids {
		ids[i] = 1
	}
	c := mkCorpus(t, ids, []int{0})
	sa, err := Build(c, 5)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	lcp, err := BuildLCP(c, sa)
	if err != nil {
		t.Fatalf("BuildLCP: %v", err)
	}
	for i := 1; i < lcp.Len()-1; i++ {
		if lcp.At(i) > 5 {
			t.Errorf("L[%d] = %d, want <= 5 (MAX_CMP)", i, lcp.At(i))
		}
	}
}

func TestBuildLCPRejectsSizeMismatch(t *testing.T) {
	c := mkCorpus(t, []int32{1, 2, 3}, []int{0})
	sa, err := New([]int{0, 1}, DefaultMaxCmp)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := BuildLCP(c, sa); err == nil {
		t.Fatal("expected error for corpus/suffix-array size mismatch")
	}
}

func TestEmptyCorpus(t *testing.T) {
	c := mkCorpus(t, nil, nil)
	sa, err := Build(c, DefaultMaxCmp)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if sa.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", sa.Size())
	}
	lcp, err := BuildLCP(c, sa)
	if err != nil {
		t.Fatalf("BuildLCP: %v", err)
	}
	if lcp.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", lcp.Len())
	}
}
