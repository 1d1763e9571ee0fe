package sorting

// bubbleSort runs n-1 passes of adjacent compare-and-exchange. After pass i
// the last i+1 positions hold their final values.
func bubbleSort(c *Channel) bool {
	values := c.state.Values
	n := len(values)

	for i := range n - 1 {
		for j := range n - i - 1 {
			if !c.compare(j, j+1) {
				return false
			}

			if values[j] > values[j+1] {
				if !c.exchange(j, j+1) {
					return false
				}

				continue
			}

			if !c.clear(j, j+1) {
				return false
			}
		}

		if !c.settle(n - i - 1) {
			return false
		}
	}

	return true
}
