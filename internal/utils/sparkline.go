package utils

import "math"

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws a 0..1 series with block characters. Values outside the
// range are clamped.
func Sparkline(series []float64) string {
	top := len(sparkBlocks) - 1
	out := make([]rune, len(series))
	for i, v := range series {
		idx := 0
		if !math.IsNaN(v) {
			idx = int(math.Round(v * float64(top)))
		}
		if idx < 0 {
			idx = 0
		}
		if idx > top {
			idx = top
		}
		out[i] = sparkBlocks[idx]
	}
	return string(out)
}
