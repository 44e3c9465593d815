package sim

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// NewTrackPlot creates new plot of tilt angle over time from the three data sources:
// truth:   true tilt angle; may be nil if the truth is not known
// measure: measured tilt angle
// filter:  filter estimate of tilt angle
// Every data matrix stores time in its first column and angle in its second column.
// It returns error if the plot fails to be created. This can be due to either of the following conditions:
// * either measure or filter is nil
// * either of the supplied data matrices does not have at least 2 columns
// * gonum plot fails to be created
func NewTrackPlot(truth, measure, filter *mat.Dense) (*plot.Plot, error) {
	if measure == nil || filter == nil {
		return nil, fmt.Errorf("Invalid data supplied")
	}

	for _, m := range []*mat.Dense{truth, measure, filter} {
		if m == nil {
			continue
		}
		if _, c := m.Dims(); c < 2 {
			return nil, fmt.Errorf("Invalid data dimensions")
		}
	}

	p := plot.New()

	p.Title.Text = "Particle filter estimate of tilt angle"
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Tilt angle (rad)"

	legend := plot.NewLegend()
	legend.Top = true
	p.Legend = legend

	// Make a scatter plotter for measurement data
	measScatter, err := plotter.NewScatter(makePoints(measure))
	if err != nil {
		return nil, fmt.Errorf("Failed to create scatter: %w", err)
	}
	measScatter.GlyphStyle.Color = color.RGBA{G: 255, A: 128}
	measScatter.GlyphStyle.Radius = vg.Points(1)

	p.Add(measScatter)
	p.Legend.Add("measurement", measScatter)

	if truth != nil {
		truthLine, err := plotter.NewLine(makePoints(truth))
		if err != nil {
			return nil, fmt.Errorf("Failed to create line: %w", err)
		}
		truthLine.LineStyle.Color = color.RGBA{R: 255, B: 128, A: 255}
		truthLine.LineStyle.Width = vg.Points(1)

		p.Add(truthLine)
		p.Legend.Add("truth", truthLine)
	}

	// Make a scatter plotter for filter data
	filterScatter, err := plotter.NewScatter(makePoints(filter))
	if err != nil {
		return nil, fmt.Errorf("Failed to create scatter: %w", err)
	}
	filterScatter.GlyphStyle.Color = color.RGBA{R: 169, G: 169, B: 169, A: 255}
	filterScatter.Shape = draw.CrossGlyph{}
	filterScatter.GlyphStyle.Radius = vg.Points(2)

	p.Add(filterScatter)
	p.Legend.Add("filtered", filterScatter)

	return p, nil
}

func makePoints(m *mat.Dense) plotter.XYs {
	r, _ := m.Dims()
	pts := make(plotter.XYs, r)
	for i := 0; i < r; i++ {
		pts[i].X = m.At(i, 0)
		pts[i].Y = m.At(i, 1)
	}

	return pts
}
