package game

import (
	"fmt"
	"time"
)

// FormatElapsed renders d as minutes:seconds with two-digit seconds.
// Minutes are not wrapped at the hour.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
