package chart

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	model "datasense/domain/chart"
	"datasense/domain/dataset"
	"datasense/internal/schema"
)

// group is one x-axis bucket with per-series values
type group struct {
	label  string
	values map[string][]float64
	rows   int
}

// aggregate buckets rows by the x column. With AggNone every row is its own bucket.
// Date buckets are sorted chronologically; other buckets keep first-seen order.
func aggregate(ds *dataset.Dataset, cfg model.Config) []*group {
	isDate := ds.ColumnTypes[cfg.XAxis] == dataset.TypeDate
	var groups []*group
	index := map[string]*group{}

	for _, row := range ds.Rows {
		x := row[cfg.XAxis]
		if x.IsNull() {
			continue
		}
		label := x.String()

		var g *group
		if cfg.Aggregation == model.AggNone {
			g = &group{label: label, values: map[string][]float64{}}
			groups = append(groups, g)
		} else if g = index[label]; g == nil {
			g = &group{label: label, values: map[string][]float64{}}
			index[label] = g
			groups = append(groups, g)
		}

		g.rows++
		for _, y := range cfg.YAxis {
			if f, ok := schema.NumberOf(row[y]); ok {
				g.values[y] = append(g.values[y], f)
			}
		}
	}

	if isDate {
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].label < groups[j].label })
	}
	return groups
}

func reduce(g *group, series string, agg model.Aggregation) float64 {
	values := g.values[series]
	if agg == model.AggCount {
		return float64(g.rows)
	}
	if len(values) == 0 {
		return 0
	}
	switch agg {
	case model.AggAvg:
		mean, _ := stats.Mean(values)
		return mean
	case model.AggMin:
		return floats.Min(values)
	case model.AggMax:
		return floats.Max(values)
	default:
		return floats.Sum(values)
	}
}

func globalOptions(cfg model.Config) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{PageTitle: cfg.Title, Width: "100%", Height: "520px"}),
		charts.WithTitleOpts(opts.Title{Title: cfg.Title, Subtitle: cfg.Reasoning}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(cfg.YAxis) > 1)}),
	}
}

// RenderPreview writes a standalone HTML page drawing the recommendation over the dataset rows.
func RenderPreview(w io.Writer, rec model.Recommendation, ds *dataset.Dataset) error {
	cfg := rec.Config
	if res := Validate(cfg, ds.ColumnNames); !res.Valid {
		return fmt.Errorf("invalid chart config: %s: %s", res.Errors[0].Field, res.Errors[0].Message)
	}

	switch cfg.Type {
	case model.TypeLine, model.TypeArea:
		return renderLine(w, cfg, ds)
	case model.TypeBar:
		return renderBar(w, cfg, ds)
	case model.TypePie:
		return renderPie(w, cfg, ds)
	case model.TypeScatter:
		return renderScatter(w, cfg, ds)
	case model.TypeHistogram:
		return renderHistogram(w, cfg, ds)
	}
	return fmt.Errorf("unsupported chart type %q", cfg.Type)
}

func labels(groups []*group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.label
	}
	return out
}

func renderLine(w io.Writer, cfg model.Config, ds *dataset.Dataset) error {
	groups := aggregate(ds, cfg)
	line := charts.NewLine()
	line.SetGlobalOptions(globalOptions(cfg)...)
	line.SetXAxis(labels(groups))
	for _, y := range cfg.YAxis {
		data := make([]opts.LineData, len(groups))
		for i, g := range groups {
			data[i] = opts.LineData{Value: reduce(g, y, cfg.Aggregation)}
		}
		if cfg.Type == model.TypeArea {
			line.AddSeries(y, data, charts.WithAreaStyleOpts(opts.AreaStyle{}))
		} else {
			line.AddSeries(y, data)
		}
	}
	return line.Render(w)
}

func renderBar(w io.Writer, cfg model.Config, ds *dataset.Dataset) error {
	groups := aggregate(ds, cfg)
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(cfg)...)
	bar.SetXAxis(labels(groups))
	for _, y := range cfg.YAxis {
		data := make([]opts.BarData, len(groups))
		for i, g := range groups {
			data[i] = opts.BarData{Value: reduce(g, y, cfg.Aggregation)}
		}
		seriesOpts := []charts.SeriesOpts{
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(cfg.ShowLabels), Position: "top"}),
		}
		if cfg.Variant == model.VariantStacked {
			seriesOpts = append(seriesOpts, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
		}
		bar.AddSeries(y, data, seriesOpts...)
	}
	return bar.Render(w)
}

func renderPie(w io.Writer, cfg model.Config, ds *dataset.Dataset) error {
	agg := cfg.Aggregation
	series := ""
	if len(cfg.YAxis) > 0 {
		series = cfg.YAxis[0]
	} else {
		agg = model.AggCount
	}
	// a pie always needs one slice per category
	grouped := cfg
	if grouped.Aggregation == model.AggNone {
		grouped.Aggregation = model.AggSum
	}
	groups := aggregate(ds, grouped)

	data := make([]opts.PieData, len(groups))
	for i, g := range groups {
		data[i] = opts.PieData{Name: g.label, Value: reduce(g, series, agg)}
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(globalOptions(cfg)...)
	seriesOpts := []charts.SeriesOpts{
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(cfg.ShowLabels), Formatter: "{b}: {d}%"}),
	}
	if cfg.Variant == model.VariantDonut {
		seriesOpts = append(seriesOpts, charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}))
	}
	pie.AddSeries(cfg.XAxis, data, seriesOpts...)
	return pie.Render(w)
}

func renderScatter(w io.Writer, cfg model.Config, ds *dataset.Dataset) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(append(globalOptions(cfg),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: cfg.XAxis, NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: cfg.YAxis[0], NameLocation: "middle", NameGap: 30}),
	)...)

	for _, y := range cfg.YAxis {
		var points []opts.ScatterData
		for _, row := range ds.Rows {
			xv, okX := schema.NumberOf(row[cfg.XAxis])
			yv, okY := schema.NumberOf(row[y])
			if okX && okY {
				points = append(points, opts.ScatterData{Value: []interface{}{xv, yv}})
			}
		}
		scatter.AddSeries(y, points, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	}
	return scatter.Render(w)
}

// histogramBins uses Sturges' rule
func histogramBins(n int) int {
	if n < 2 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(n)))) + 1
}

func renderHistogram(w io.Writer, cfg model.Config, ds *dataset.Dataset) error {
	var values []float64
	for _, row := range ds.Rows {
		if f, ok := schema.NumberOf(row[cfg.XAxis]); ok {
			values = append(values, f)
		}
	}

	var bucketNames []string
	var data []opts.BarData
	if len(values) > 0 {
		lo, hi := floats.Min(values), floats.Max(values)
		bins := histogramBins(len(values))
		width := (hi - lo) / float64(bins)
		if width == 0 {
			bins, width = 1, 1
		}
		counts := make([]int, bins)
		for _, v := range values {
			i := int((v - lo) / width)
			if i >= bins {
				i = bins - 1
			}
			counts[i]++
		}
		for i, c := range counts {
			start := lo + float64(i)*width
			bucketNames = append(bucketNames, fmt.Sprintf("%.2f-%.2f", start, start+width))
			data = append(data, opts.BarData{Value: c})
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(cfg)...)
	bar.SetXAxis(bucketNames).AddSeries(cfg.XAxis, data, charts.WithBarChartOpts(opts.BarChart{BarCategoryGap: "0%"}))
	return bar.Render(w)
}
