package sorting

import "slices"

// mergeSort sorts values[left:right+1]. A false return means the run was
// stopped and no further merge may happen at any level above.
func mergeSort(c *Channel, left, right int) bool {
	if left >= right {
		return true
	}

	if !c.running() {
		return false
	}

	mid := left + (right-left)/2

	if !mergeSort(c, left, mid) {
		return false
	}

	if !mergeSort(c, mid+1, right) {
		return false
	}

	return merge(c, left, mid, right)
}

// takeLeft picks the left buffer on ties, which keeps the merge stable.
func takeLeft(l, r int) bool {
	return l <= r
}

// merge combines the sorted runs [left, mid] and [mid+1, right]. Every write
// counts as a swap, including the drain of whichever buffer is left over;
// only the head-to-head picks count as comparisons.
func merge(c *Channel, left, mid, right int) bool {
	values := c.state.Values
	lbuf := slices.Clone(values[left : mid+1])
	rbuf := slices.Clone(values[mid+1 : right+1])

	i, j, k := 0, 0, left

	// restore writes the unconsumed buffers back so a stopped merge leaves
	// a permutation of the original range.
	restore := func() bool {
		n := copy(values[k:right+1], lbuf[i:])
		copy(values[k+n:right+1], rbuf[j:])

		return false
	}

	for i < len(lbuf) && j < len(rbuf) {
		if !c.compare(k) {
			return restore()
		}

		fromLeft := takeLeft(lbuf[i], rbuf[j])

		next := rbuf[j]
		if fromLeft {
			next = lbuf[i]
		}

		if !c.overwrite(k, next) {
			return restore()
		}

		if fromLeft {
			i++
		} else {
			j++
		}

		k++
	}

	for ; i < len(lbuf); i, k = i+1, k+1 {
		if !c.overwrite(k, lbuf[i]) {
			return restore()
		}
	}

	for ; j < len(rbuf); j, k = j+1, k+1 {
		if !c.overwrite(k, rbuf[j]) {
			return restore()
		}
	}

	return true
}
