package s3m

type numeric interface {
	int | float64
}

func clampMax[T numeric](v, max T) T {
	if v > max {
		return max
	}
	return v
}

// rowDuration returns a single row play time, in seconds.
//
// A tempo of T means 2*T/5 ticks per second,
// so a row of N ticks takes N*5/(2*T) seconds.
func rowDuration(speed, tempo int) float64 {
	return 60 * (float64(speed) / (24 * float64(tempo)))
}
