package backoffice

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

// ChartOptions tunes chart rendering.
type ChartOptions struct {
	Theme      string
	AssetsHost string
	Height     string
}

// RenderChart converts a series into self-contained go-echarts HTML.
func RenderChart(series ChartSeries, options ChartOptions) (string, error) {
	switch series.Type {
	case ChartBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(globalChartOptions(series, options)...)
		bar.SetXAxis(series.Labels)
		bar.AddSeries(seriesName(series), toBarData(series))
		return renderChart(bar)
	case ChartPie:
		pie := charts.NewPie()
		pie.SetGlobalOptions(globalChartOptions(series, options)...)
		pie.AddSeries(seriesName(series), toPieData(series))
		return renderChart(pie)
	}
	return "", fmt.Errorf("backoffice: unsupported chart type %q", series.Type)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func globalChartOptions(series ChartSeries, options ChartOptions) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  options.Theme,
		Width:  "100%",
		Height: options.Height,
	}
	if initOpts.Theme == "" {
		initOpts.Theme = types.ThemeWesteros
	}
	if initOpts.Height == "" {
		initOpts.Height = defaultChartHeight
	}
	if options.AssetsHost != "" {
		initOpts.AssetsHost = options.AssetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: series.Title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func seriesName(series ChartSeries) string {
	if series.ValueLabel != "" {
		return series.ValueLabel
	}
	return "Records"
}

func toBarData(series ChartSeries) []opts.BarData {
	data := make([]opts.BarData, len(series.Values))
	for i, value := range series.Values {
		data[i] = opts.BarData{Name: series.Labels[i], Value: value}
	}
	return data
}

func toPieData(series ChartSeries) []opts.PieData {
	data := make([]opts.PieData, len(series.Values))
	for i, value := range series.Values {
		data[i] = opts.PieData{Name: series.Labels[i], Value: value}
	}
	return data
}
