package report

import (
	"fmt"
	"strings"
)

// Render formats a report as structured text. Section order is fixed:
// header, overview, breakdown, comparison, insight, footer.
func Render(r *Report) string {
	var b strings.Builder

	title := "📊 日报"
	if r.Type == "weekly" {
		title = "📈 周报"
	}
	fmt.Fprintf(&b, "%s %s", title, r.PeriodStart)
	if r.PeriodEnd != r.PeriodStart {
		fmt.Fprintf(&b, " ~ %s", r.PeriodEnd)
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", 40) + "\n\n")

	fmt.Fprintf(&b, "净增关注: %d (新增 %d / 取关 %d)\n", r.Metrics.NetGrowth, r.Metrics.NewUsers, r.Metrics.CancelUsers)
	fmt.Fprintf(&b, "累计用户: %d\n", r.Metrics.TotalUsers)
	fmt.Fprintf(&b, "总阅读量: %d\n", r.Metrics.TotalReads)
	fmt.Fprintf(&b, "总分享量: %d\n", r.Metrics.TotalShares)
	b.WriteString("\n")

	if len(r.DailyGrowth) > 0 {
		b.WriteString("每日净增:\n")
		for _, d := range r.DailyGrowth {
			fmt.Fprintf(&b, "  %s  %+d\n", d.Date, d.Growth)
		}
		b.WriteString("\n")
	}

	if len(r.TopArticles) > 0 {
		b.WriteString("近期发文:\n")
		for i, a := range r.TopArticles {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, a.Title)
		}
		b.WriteString("\n")
	}

	b.WriteString("环比变化:\n")
	fmt.Fprintf(&b, "  关注 %s | 阅读 %s | 分享 %s\n\n", r.Changes.UserChange, r.Changes.ReadChange, r.Changes.ShareChange)

	fmt.Fprintf(&b, "洞察: %s\n", r.Insight)
	b.WriteString("\n" + strings.Repeat("-", 40) + "\n")
	fmt.Fprintf(&b, "generated at %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))

	return b.String()
}
