package console

import (
	"fmt"
	"time"
)

// timeLayout повторяет привычный вид локальной даты: "Mon Jan  2 15:04:05 2006"
const timeLayout = time.ANSIC

// formatSpan печатает промежуток в секундах как "1d 2h 3m". Отрицательные значения считаются нулем.
func formatSpan(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dd %dh %dm", seconds/86400, seconds%86400/3600, seconds%3600/60)
}

// formatAge печатает давность как "3d 04:05:06"
func formatAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	days := secs / 86400
	secs %= 86400
	clock := fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
	if days == 0 {
		return clock
	}
	return fmt.Sprintf("%dd %s", days, clock)
}
