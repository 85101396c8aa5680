package dice

// Uniform returns a float drawn uniformly from [lo, hi).
//
// Precondition: lo <= hi.
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Percentile returns a float drawn uniformly from [0, 100).
func Percentile(src Source) float64 {
	return src.Float64() * 100
}

// Chance reports whether an event with probability p occurs.
// p <= 0 never occurs; p >= 1 always occurs.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}

// Pick returns a uniformly chosen element of options.
//
// Precondition: len(options) > 0.
func Pick[T any](src Source, options []T) T {
	return options[src.Intn(len(options))]
}
