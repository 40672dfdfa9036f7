package packaging

import (
	"fmt"
	"math"
)

// UnknownDuration is reported when the delivered file cannot be probed.
const UnknownDuration = "0:00"

// FormatDuration renders seconds as m:ss, truncating fractional seconds.
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return UnknownDuration
	}
	total := int64(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
