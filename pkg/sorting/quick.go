package sorting

// quickSort sorts values[low:high+1] around Lomuto partitions. Each side is
// only entered when the partition before it completed.
func quickSort(c *Channel, low, high int) bool {
	if low >= high {
		return true
	}

	if !c.running() {
		return false
	}

	pi, ok := partition(c, low, high)
	if !ok {
		return false
	}

	if !quickSort(c, low, pi-1) {
		return false
	}

	return quickSort(c, pi+1, high)
}

// partition places values[high] at its final index and returns that index.
// Exchanges with i == j inside the scan are skipped; the closing exchange of
// i+1 and high is always performed and counted, even when it is a self-swap.
func partition(c *Channel, low, high int) (int, bool) {
	values := c.state.Values
	pivot := values[high]

	if !c.activate(high) {
		return 0, false
	}

	i := low - 1

	for j := low; j < high; j++ {
		if !c.compare(j) {
			return 0, false
		}

		if values[j] < pivot {
			i++

			if i != j {
				if !c.exchange(i, j) {
					return 0, false
				}

				continue
			}
		}

		if !c.clear(j) {
			return 0, false
		}
	}

	if !c.exchange(i+1, high) {
		return 0, false
	}

	return i + 1, true
}
