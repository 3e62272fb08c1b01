package widget

import (
	"math"
	"strconv"
)

// readingCharsPerMinute is the assumed narration rate used for the
// estimated playback duration. Display heuristic only.
const readingCharsPerMinute = 150

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatSize renders a byte count using binary units (base 1024),
// rounded to at most two decimal places with trailing zeros dropped.
// Zero and negative sizes render as "0 Bytes".
func FormatSize(size int64) string {
	if size <= 0 {
		return "0 Bytes"
	}
	i := 0
	v := float64(size)
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}

// EstimateMinutes returns the estimated playback duration for a text
// of the given length: ceil(textLen / 150), minimum zero.
func EstimateMinutes(textLen int) int {
	if textLen <= 0 {
		return 0
	}
	return (textLen + readingCharsPerMinute - 1) / readingCharsPerMinute
}
