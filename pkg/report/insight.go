package report

import "strings"

// insightRule maps a metric condition to one insight line.
type insightRule struct {
	match func(Metrics) bool
	text  string
}

// insightRules is evaluated in order; every matching rule contributes
// its line and the results are concatenated.
var insightRules = []insightRule{
	{func(m Metrics) bool { return m.NetGrowth > 0 }, "关注人数正增长，内容方向值得保持。"},
	{func(m Metrics) bool { return m.NetGrowth < 0 }, "关注人数净流失，建议检查近期内容质量与推送频率。"},
	{func(m Metrics) bool { return m.TotalReads > 1000 }, "阅读量表现良好。"},
	{func(m Metrics) bool { return m.TotalShares > 100 }, "分享量活跃，读者传播意愿强。"},
	{func(m Metrics) bool { return m.Articles < 3 }, "发文较少，建议增加发布频率以维持活跃度。"},
}

const insightFallback = "数据平稳，暂无显著变化。"

// Insight evaluates the fixed rule list against the metrics and returns
// the concatenated matching lines, or a default line when none fire.
func Insight(m Metrics) string {
	var lines []string
	for _, rule := range insightRules {
		if rule.match(m) {
			lines = append(lines, rule.text)
		}
	}
	if len(lines) == 0 {
		return insightFallback
	}
	return strings.Join(lines, " ")
}
