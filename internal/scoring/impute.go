package scoring

import "math"

// fillNonFinite replaces ±Inf with NaN, then fills every NaN with the
// largest finite value of its column. A column with no finite value keeps
// its NaNs, which is always the case for a one-row batch.
func fillNonFinite(X [][]float64) {
	if len(X) == 0 {
		return
	}
	for i := range X {
		for j, v := range X[i] {
			if math.IsInf(v, 0) {
				X[i][j] = math.NaN()
			}
		}
	}

	cols := len(X[0])
	for j := 0; j < cols; j++ {
		colMax, ok := columnMax(X, j)
		if !ok {
			continue
		}
		for i := range X {
			if math.IsNaN(X[i][j]) {
				X[i][j] = colMax
			}
		}
	}
}

func columnMax(X [][]float64, j int) (float64, bool) {
	best, found := 0.0, false
	for i := range X {
		v := X[i][j]
		if math.IsNaN(v) {
			continue
		}
		if !found || v > best {
			best, found = v, true
		}
	}
	return best, found
}
