package utils

import "sort"

type Index []int

func NewIndex(N int) (I Index) {
	return make(Index, N)
}

// NewRange returns [rmin, rmax)
func NewRange(rmin, rmax int) (r Index) {
	if rmax < rmin {
		return Index{}
	}
	r = make(Index, rmax-rmin)
	for i := range r {
		r[i] = rmin + i
	}
	return
}

func (I Index) Copy() (r Index) {
	r = make(Index, len(I))
	copy(r, I)
	return
}

func (I Index) Add(val int) (r Index) {
	r = I.Copy()
	for i := range r {
		r[i] += val
	}
	return
}

func (I Index) Sum() (s int) {
	for _, val := range I {
		s += val
	}
	return
}

// Sorted returns a sorted copy.
func (I Index) Sorted() (r Index) {
	r = I.Copy()
	sort.Ints(r)
	return
}

// Contains reports whether every value of J is in I.
func (I Index) Contains(J Index) bool {
	for _, j := range J {
		found := false
		for _, i := range I {
			if i == j {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// PrefixSums returns the exclusive prefix sums of I.
func (I Index) PrefixSums() (r Index) {
	r = make(Index, len(I)+1)
	for i, val := range I {
		r[i+1] = r[i] + val
	}
	return
}
