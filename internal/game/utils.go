package game

import (
	"fmt"
	"math"
	"time"
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// smooth blends next into prev with the given weight on prev.
func smooth(prev, next, weight float64) float64 {
	return weight*prev + (1-weight)*next
}

// compressLevel maps an RMS value onto a perceptually flatter [0,1] range.
func compressLevel(rms float64) float64 {
	return clamp01(math.Pow(rms, 0.3))
}

// formatDuration formats a duration as MM:SS
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func formatSeconds(s float64) string {
	return formatDuration(time.Duration(s * float64(time.Second)))
}
