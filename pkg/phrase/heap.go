package phrase

import "container/heap"

// heapEntry is one candidate phrase held in the bounded top-N heap. seq
// is a monotonically increasing insertion sequence number used to break
// frequency ties deterministically: among equal frequencies, the entry
// with the higher seq (inserted later) is evicted first.
type heapEntry struct {
	phrase Phrase
	freq   int
	seq    int
}

// phraseHeap is a min-heap on (freq asc, seq desc) so that heap.Pop
// always returns the weakest candidate: lowest frequency, and among
// ties, the most recently inserted.
type phraseHeap []heapEntry

func (h phraseHeap) Len() int { return len(h) }

func (h phraseHeap) Less(i, j int) bool {
	if h[i].freq != h[j].freq {
		return h[i].freq < h[j].freq
	}
	return h[i].seq > h[j].seq
}

func (h phraseHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *phraseHeap) Push(x any) {
	*h = append(*h, x.(heapEntry))
}

func (h *phraseHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}

// topN bounds a phraseHeap to at most maxSize entries, evicting the
// weakest candidate (per phraseHeap.Less) on overflow.
type topN struct {
	h       phraseHeap
	maxSize int
	nextSeq int
}

func newTopN(maxSize int) *topN {
	t := &topN{maxSize: maxSize}
	heap.Init(&t.h)
	return t
}

// insert records a candidate, evicting the weakest entry if the heap
// would otherwise exceed maxSize.
func (t *topN) insert(p Phrase, freq int) {
	heap.Push(&t.h, heapEntry{phrase: p, freq: freq, seq: t.nextSeq})
	t.nextSeq++
	if t.h.Len() > t.maxSize {
		heap.Pop(&t.h)
	}
}

// drain empties the heap and returns its contents sorted by frequency
// descending, ties broken by ascending insertion sequence (the order
// in which candidates were first recorded).
func (t *topN) drain() []heapEntry {
	entries := make([]heapEntry, len(t.h))
	copy(entries, t.h)
	t.h = t.h[:0]

	// insertion sort is fine here: maxPhrases is bounded (<= 32767) and
	// this runs once per extraction.
	for i := 1; i < len(entries); i++ {
		e := entries[i]
		j := i - 1
		for j >= 0 && less(e, entries[j]) {
			entries[j+1] = entries[j]
			j--
		}
		entries[j+1] = e
	}
	return entries
}

// less reports whether a should sort before b in the final,
// frequency-descending, tie-ascending-by-seq order.
func less(a, b heapEntry) bool {
	if a.freq != b.freq {
		return a.freq > b.freq
	}
	return a.seq < b.seq
}
