package report

import "fmt"

// CalcChangeRate returns the signed percentage delta between current and
// previous as a string rounded to one decimal, "+" prefixed when
// non-negative. A zero previous value yields "+∞" (current > 0) or "0%"
// instead of dividing.
func CalcChangeRate(current, previous float64) string {
	if previous == 0 {
		if current > 0 {
			return "+∞"
		}
		return "0%"
	}
	rate := (current - previous) / previous * 100
	if rate >= 0 {
		return fmt.Sprintf("+%.1f%%", rate)
	}
	return fmt.Sprintf("%.1f%%", rate)
}
