package sorting

// selectionSort moves the minimum of values[i:] into i on each pass.
// Ties keep the earliest minimum.
func selectionSort(c *Channel) bool {
	values := c.state.Values
	n := len(values)

	for i := range n {
		if !c.activate(i) {
			return false
		}

		minIdx := i

		for j := i + 1; j < n; j++ {
			if !c.compare(j, minIdx) {
				return false
			}

			stale := j
			if values[j] < values[minIdx] {
				stale, minIdx = minIdx, j
			}

			if !c.clear(stale) {
				return false
			}
		}

		if minIdx != i && !c.exchange(i, minIdx) {
			return false
		}

		if !c.settle(i) {
			return false
		}
	}

	return true
}
