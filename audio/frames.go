package audio

import "time"

// FrameSamples returns the sample count covering duration at the given rate
// and channel layout.
func FrameSamples(duration time.Duration, rate, channels int) int {
	return int(duration.Seconds() * float64(channels) * float64(rate))
}
