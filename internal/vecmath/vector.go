package vecmath

// Sum returns the sum of the elements of x. An empty slice sums to 0.
func Sum(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum
}

// Mean returns the arithmetic mean of x, or 0 for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return Sum(x) / float64(len(x))
}

// MeanIndexed returns the mean of x restricted to the given indices,
// or 0 when idx is empty.
func MeanIndexed(x []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range idx {
		sum += x[i]
	}
	return sum / float64(len(idx))
}

// MaxVec returns the largest element of x, or 0 for an empty slice.
func MaxVec(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	max := x[0]
	for _, v := range x[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Fill sets every element of x to v.
func Fill(x []float64, v float64) {
	for i := range x {
		x[i] = v
	}
}
