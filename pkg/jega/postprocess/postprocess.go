// Package postprocess implements the PostProcessor operator family:
// PlotPostProcessor and ArchivePromotionPostProcessor, per
// SPEC_FULL.md §4.10/§6.5. PlotPostProcessor's scatter rendering is
// adapted directly from the teacher's util.PlotResults
// (go-echarts/v2/charts.Scatter), generalized from a fixed 2D
// true-Pareto-front comparison to an arbitrary-objective-count final
// population export (only the first two objectives are plotted when
// more than two are present, since go-echarts scatter is 2D).
package postprocess

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/evojega/jega/pkg/jega/design"
	"github.com/evojega/jega/pkg/jega/jlog"
	"github.com/evojega/jega/pkg/jega/operator"
	"github.com/evojega/jega/pkg/jega/paramdb"
)

// PostProcessor runs once after the MainLoop stops, given the final
// population.
type PostProcessor interface {
	operator.Operator
	Process(final *design.Group) error
}

// PlotPostProcessor renders the final population's first two
// objectives as an HTML scatter chart via go-echarts.
type PlotPostProcessor struct {
	h   operator.Handle
	log jlog.Logger

	// OutputPath is the HTML file written by Process. Defaults to
	// "jega_results.html".
	OutputPath string
	// Title is the chart title.
	Title string
	// Writer overrides the destination for Render, for tests. When
	// set, OutputPath is ignored.
	Writer io.Writer
}

// NewPlotPostProcessor constructs the post-processor bound to h.
func NewPlotPostProcessor(h operator.Handle) *PlotPostProcessor {
	p := &PlotPostProcessor{
		h:          h,
		log:        h.Logger().ForOperator(string(operator.FamilyPostProcessor), "plot"),
		OutputPath: "jega_results.html",
		Title:      "JEGA Pareto Front",
	}
	p.log.OperatorConstructed()
	return p
}

func (p *PlotPostProcessor) Name() string           { return "plot" }
func (p *PlotPostProcessor) Family() operator.Family { return operator.FamilyPostProcessor }
func (p *PlotPostProcessor) Finalize() error         { p.log.OperatorFinalized(); return nil }

func (p *PlotPostProcessor) Clone(h operator.Handle) (operator.Operator, error) {
	c := NewPlotPostProcessor(h)
	c.OutputPath, c.Title = p.OutputPath, p.Title
	c.log.OperatorCloned()
	return c, nil
}

func (p *PlotPostProcessor) PollForParameters(db *paramdb.DB) error {
	path, err := db.String("method.jega.plot_output_path", p.OutputPath)
	if err != nil {
		return err
	}
	p.OutputPath = path
	return nil
}

// Process renders final's objective-space points as a 2D scatter
// chart. Designs with fewer than two objectives are skipped entirely
// (nothing to plot); only the first two objectives are used when more
// are present.
func (p *PlotPostProcessor) Process(final *design.Group) error {
	target := p.h.Target()
	if target.NOF() < 2 {
		p.log.Quiet("plot post-processor requires at least 2 objectives, skipping", "nof", target.NOF())
		return nil
	}

	designs := final.BeginOF().Designs()
	points := make([]opts.ScatterData, len(designs))
	for i, d := range designs {
		points[i] = opts.ScatterData{
			Value:      []float64{d.Objectives[0], d.Objectives[1]},
			Symbol:     "triangle",
			SymbolSize: 8,
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: p.Title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithXAxisOpts(opts.XAxis{Name: target.Objectives[0].Name, SplitLine: &opts.SplitLine{Show: opts.Bool(true)}}),
		charts.WithYAxisOpts(opts.YAxis{Name: target.Objectives[1].Name, SplitLine: &opts.SplitLine{Show: opts.Bool(true)}}),
	)
	scatter.AddSeries("Final population", points).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
			charts.WithEmphasisOpts(opts.Emphasis{}),
		)

	w := p.Writer
	if w == nil {
		f, err := os.Create(p.OutputPath)
		if err != nil {
			return fmt.Errorf("jega/postprocess: plot: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("jega/postprocess: plot: render: %w", err)
	}
	p.log.Verbose("plot rendered", "designs", len(designs), "path", p.OutputPath)
	return nil
}

// ArchivePromotionPostProcessor promotes Pareto-optimal Designs from
// the DesignTarget's discard archive into the final solution set,
// catching any non-dominated Design evaluated during the run but
// discarded by a later selection/niching pass.
type ArchivePromotionPostProcessor struct {
	h   operator.Handle
	log jlog.Logger

	dominates func(a, b *design.Design, objs []design.ObjectiveInfo) bool
}

// NewArchivePromotionPostProcessor constructs the post-processor bound
// to h.
func NewArchivePromotionPostProcessor(h operator.Handle) *ArchivePromotionPostProcessor {
	p := &ArchivePromotionPostProcessor{
		h:         h,
		log:       h.Logger().ForOperator(string(operator.FamilyPostProcessor), "archive_promotion"),
		dominates: signedDominates,
	}
	p.log.OperatorConstructed()
	return p
}

func (p *ArchivePromotionPostProcessor) Name() string           { return "archive_promotion" }
func (p *ArchivePromotionPostProcessor) Family() operator.Family { return operator.FamilyPostProcessor }
func (p *ArchivePromotionPostProcessor) Finalize() error         { p.log.OperatorFinalized(); return nil }

func (p *ArchivePromotionPostProcessor) Clone(h operator.Handle) (operator.Operator, error) {
	c := NewArchivePromotionPostProcessor(h)
	c.log.OperatorCloned()
	return c, nil
}

func (p *ArchivePromotionPostProcessor) PollForParameters(db *paramdb.DB) error { return nil }

// Process scans the discard archive for Designs not dominated by any
// Design currently in final, inserting a copy of each survivor into
// final. A survivor whose variables equal those of a Design already in
// final is skipped.
func (p *ArchivePromotionPostProcessor) Process(final *design.Group) error {
	target := p.h.Target()
	archived := target.DiscardArchive().Designs()
	current := final.BeginOF().Designs()

	promoted := 0
	for _, candidate := range archived {
		dominated := false
		for _, d := range current {
			if p.dominates(d, candidate, target.Objectives) {
				dominated = true
				break
			}
		}
		if dominated {
			continue
		}
		if final.BeginDV().FindEqual(candidate) != nil {
			continue
		}
		clone := p.h.NewDesignFrom(candidate)
		if err := final.Insert(clone); err != nil {
			return err
		}
		promoted++
	}
	p.log.Verbose("archive promotion complete", "promoted", promoted, "archive_size", len(archived))
	return nil
}

func signedDominates(a, b *design.Design, objs []design.ObjectiveInfo) bool {
	better := false
	for i, info := range objs {
		av, bv := a.Objectives[i], b.Objectives[i]
		if info.Sense == design.Maximize {
			av, bv = -av, -bv
		}
		if av > bv {
			return false
		}
		if av < bv {
			better = true
		}
	}
	return better
}
