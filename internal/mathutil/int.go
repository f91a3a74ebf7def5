package mathutil

// IntMax returns the larger of two ints.
func IntMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// IntAbs returns the absolute value of an int.
func IntAbs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// IntSign returns -1, 0, or 1 based on sign.
func IntSign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// Chebyshev returns the king-move distance between two points.
func Chebyshev(x1, y1, x2, y2 int) int {
	return IntMax(IntAbs(x1-x2), IntAbs(y1-y2))
}
