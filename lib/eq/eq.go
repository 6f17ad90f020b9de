/*package eq is a simple package for telling whether two arrays are equal
to one another.*/
package eq

// Slices returns true if the two arrays have the same length and values
// and false otherwise.
func Slices[T comparable](x, y []T) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// Eps returns true if the two float arrays have the same length and are
// element-wise within eps of one another and false otherwise.
func Eps[T float32 | float64](x, y []T, eps T) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i]+eps < y[i] || x[i]-eps > y[i] {
			return false
		}
	}
	return true
}

// VecsEps returns true if the two vector arrays have the same length and
// every component is within eps and false otherwise.
func VecsEps(x, y [][3]float64, eps float64) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		for d := 0; d < 3; d++ {
			if x[i][d]+eps < y[i][d] || x[i][d]-eps > y[i][d] {
				return false
			}
		}
	}
	return true
}
