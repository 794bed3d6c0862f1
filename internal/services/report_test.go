package services

import (
	"strings"
	"testing"
)

func exampleResult(t *testing.T) *AnalysisResult {
	t.Helper()
	res, err := NewReliabilityAnalyzer(DefaultAnalysisOptions()).Analyze(ExampleTable())
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	return res
}

func TestRenderReport(t *testing.T) {
	out := RenderReport(exampleResult(t), ReportOptions{Title: "Example Scale"})
	if !strings.Contains(out, "Example Scale") {
		t.Fatalf("missing title:\n%s", out)
	}
	if !strings.Contains(out, "Cronbach's Alpha: -1.125") {
		t.Fatalf("expected alpha with three decimals:\n%s", out)
	}
	if !strings.Contains(out, "Subjects: 10  Items: 5") {
		t.Fatalf("missing shape line:\n%s", out)
	}
	for _, item := range []string{"Item1", "Item5"} {
		if !strings.Contains(out, item) {
			t.Fatalf("missing %s diagnostics:\n%s", item, out)
		}
	}
	if !strings.Contains(out, "confidence interval unavailable") {
		t.Fatalf("warnings section missing:\n%s", out)
	}
	if strings.Contains(out, "Item Statistics") {
		t.Fatalf("item statistics rendered without being requested:\n%s", out)
	}
}

func TestRenderReportOptionalSections(t *testing.T) {
	out := RenderReport(exampleResult(t), ReportOptions{ItemStatistics: true, CorrelationMatrix: true})
	if !strings.Contains(out, "Reliability Analysis") {
		t.Fatalf("default title missing:\n%s", out)
	}
	if !strings.Contains(out, "Item Statistics") {
		t.Fatalf("item statistics section missing:\n%s", out)
	}
	if !strings.Contains(out, "Inter-Item Correlations") {
		t.Fatalf("correlation section missing:\n%s", out)
	}
	// The diagonal renders as 1.000.
	if !strings.Contains(out, "1.000") {
		t.Fatalf("expected unit diagonal in matrix:\n%s", out)
	}
}

func TestRenderReportNaNAsNA(t *testing.T) {
	// In the worked example Item3's item-total correlation is undefined
	// and its alpha-if-deleted entry is omitted; both render as n/a.
	res, err := NewReliabilityAnalyzer(DefaultAnalysisOptions()).Analyze(docTable())
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	out := RenderReport(res, ReportOptions{})
	if !strings.Contains(out, "n/a") {
		t.Fatalf("expected n/a for undefined statistics:\n%s", out)
	}
}
