package backoffice

import (
	"strings"
	"testing"
)

func TestRenderChartProducesEChartsMarkup(t *testing.T) {
	for _, chartType := range []ChartType{ChartBar, ChartPie} {
		html, err := RenderChart(ChartSeries{
			Table:  TablePayments,
			Type:   chartType,
			Title:  "Payment volume by method",
			Labels: []string{"card", "wallet"},
			Values: []float64{1200, 300},
		}, ChartOptions{})
		if err != nil {
			t.Fatalf("RenderChart(%s) returned error: %v", chartType, err)
		}
		if !strings.Contains(html, "echarts") {
			t.Fatalf("expected echarts markup for %s", chartType)
		}
	}
}

func TestRenderChartRejectsUnknownType(t *testing.T) {
	if _, err := RenderChart(ChartSeries{Type: ChartType("radar")}, ChartOptions{}); err == nil {
		t.Fatalf("expected unsupported chart type error")
	}
}
