package services

import (
	"fmt"
	"math"
	"strings"
)

// ReportOptions selects the optional sections RenderReport includes.
type ReportOptions struct {
	Title             string
	ItemStatistics    bool
	CorrelationMatrix bool
}

// RenderReport formats an analysis result as a plain-text summary. Alpha
// and every derived statistic print with three decimals; undefined values
// print as n/a.
func RenderReport(res *AnalysisResult, opts ReportOptions) string {
	b := &strings.Builder{}
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Reliability Analysis"
	}
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(b, rule)
	fmt.Fprintln(b, title)
	fmt.Fprintln(b, rule)
	fmt.Fprintf(b, "Cronbach's Alpha: %s\n", fmtStat(res.Alpha))
	if ci := res.ConfidenceInterval; ci != nil {
		fmt.Fprintf(b, "%d%% CI: [%s, %s]  (SE %s)\n", int(ci.Confidence*100+0.5), fmtStat(ci.Lower), fmtStat(ci.Upper), fmtStat(ci.StdError))
	}
	ss := res.ScaleStatistics
	fmt.Fprintf(b, "Subjects: %d  Items: %d  Missing policy: %s\n", ss.NSubjects, ss.NItems, res.MissingPolicy)
	fmt.Fprintf(b, "Scale mean: %s  variance: %s  sd: %s\n", fmtStat(ss.Mean), fmtStat(ss.Variance), fmtStat(ss.StdDev))

	fmt.Fprintln(b)
	fmt.Fprintln(b, "Item Diagnostics")
	fmt.Fprintln(b, strings.Repeat("-", 60))
	fmt.Fprintf(b, "%-20s %14s %18s\n", "item", "item-total r", "alpha if deleted")
	for _, name := range res.Items {
		itr := "n/a"
		if v, ok := res.ItemTotalCorrelations[name]; ok {
			itr = fmtStat(v)
		}
		aid := "n/a"
		if v, ok := res.AlphaIfDeleted[name]; ok {
			aid = fmtStat(v)
		}
		fmt.Fprintf(b, "%-20s %14s %18s\n", truncName(name, 20), itr, aid)
	}

	if opts.ItemStatistics && len(res.ItemStatistics) > 0 {
		fmt.Fprintln(b)
		fmt.Fprintln(b, "Item Statistics")
		fmt.Fprintln(b, strings.Repeat("-", 60))
		fmt.Fprintf(b, "%-14s %9s %9s %9s %9s %7s %7s\n", "item", "mean", "std", "skew", "kurt", "min", "max")
		for _, name := range res.Items {
			st, ok := res.ItemStatistics[name]
			if !ok {
				continue
			}
			fmt.Fprintf(b, "%-14s %9s %9s %9s %9s %7s %7s\n", truncName(name, 14),
				fmtStat(st.Mean), fmtStat(st.Std), fmtStat(st.Skewness), fmtStat(st.Kurtosis), fmtStat(st.Min), fmtStat(st.Max))
		}
	}

	if opts.CorrelationMatrix && res.InterItemCorrelations != nil {
		m := res.InterItemCorrelations
		fmt.Fprintln(b)
		fmt.Fprintln(b, "Inter-Item Correlations")
		fmt.Fprintln(b, strings.Repeat("-", 60))
		fmt.Fprintf(b, "%-12s", "")
		for _, name := range m.Items {
			fmt.Fprintf(b, " %10s", truncName(name, 10))
		}
		fmt.Fprintln(b)
		for i, name := range m.Items {
			fmt.Fprintf(b, "%-12s", truncName(name, 12))
			for _, v := range m.Values[i] {
				fmt.Fprintf(b, " %10s", fmtStat(v))
			}
			fmt.Fprintln(b)
		}
	}

	if len(res.Warnings) > 0 {
		fmt.Fprintln(b)
		fmt.Fprintln(b, "Warnings")
		for _, w := range res.Warnings {
			fmt.Fprintln(b, "- "+w)
		}
	}
	return b.String()
}

func fmtStat(f Float) string {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v)
}

func truncName(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
