package vectormath

import (
	"container/heap"
	"sort"
)

// Candidate is an item scored by distance.
type Candidate struct {
	Index    int
	Distance float64
}

// candidateHeap is a max-heap on Distance so the worst kept candidate is
// evicted first.
type candidateHeap []Candidate

func (h candidateHeap) Len() int { return len(h) }
func (h candidateHeap) Less(i, j int) bool {
	if h[i].Distance == h[j].Distance {
		return h[i].Index > h[j].Index
	}
	return h[i].Distance > h[j].Distance
}
func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x any)   { *h = append(*h, x.(Candidate)) }
func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopK keeps the k nearest candidates.
type TopK struct {
	k int
	h candidateHeap
}

// NewTopK returns a collector that keeps at most k candidates.
func NewTopK(k int) *TopK {
	return &TopK{k: k, h: make(candidateHeap, 0, max(k, 0))}
}

// Offer considers a candidate.
func (t *TopK) Offer(c Candidate) {
	if t.k <= 0 {
		return
	}
	if len(t.h) < t.k {
		heap.Push(&t.h, c)
		return
	}
	if worst := t.h[0]; c.Distance < worst.Distance ||
		(c.Distance == worst.Distance && c.Index < worst.Index) {
		t.h[0] = c
		heap.Fix(&t.h, 0)
	}
}

// Sorted returns the kept candidates nearest first. Ties keep insertion
// order.
func (t *TopK) Sorted() []Candidate {
	out := make([]Candidate, len(t.h))
	copy(out, t.h)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance == out[j].Distance {
			return out[i].Index < out[j].Index
		}
		return out[i].Distance < out[j].Distance
	})
	return out
}
