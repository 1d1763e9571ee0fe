package sorting

// insertionSort shifts larger elements right until the held key fits. Only
// shifts are counted; the loop-ending comparison and the final placement are not.
func insertionSort(c *Channel) bool {
	values := c.state.Values

	for i := 1; i < len(values); i++ {
		key := values[i]
		j := i - 1

		if !c.activate(i) {
			return false
		}

		for j >= 0 && values[j] > key {
			// values[j+1] is vacated here; on abort the key goes back into it.
			if !c.compare(j, j+1) || !c.overwrite(j+1, values[j]) {
				values[j+1] = key

				return false
			}

			j--
		}

		if !c.place(j+1, key) || !c.clear(i) {
			return false
		}
	}

	return true
}
