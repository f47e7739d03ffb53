package environment

import "github.com/google/btree"

// freeList hands out the lowest free index in [lo, hi).
type freeList struct {
	free *btree.BTreeG[int]
}

func newFreeList(lo, hi int) *freeList {
	f := &freeList{free: btree.NewOrderedG[int](8)}
	for i := lo; i < hi; i++ {
		f.free.ReplaceOrInsert(i)
	}
	return f
}

// take removes and returns the lowest free index, or -1 when none is left.
func (f *freeList) take() int {
	idx, ok := f.free.DeleteMin()
	if !ok {
		return -1
	}
	return idx
}

// put returns idx to the list. It reports false if idx was already free.
func (f *freeList) put(idx int) bool {
	_, existed := f.free.ReplaceOrInsert(idx)
	return !existed
}

func (f *freeList) len() int {
	return f.free.Len()
}
