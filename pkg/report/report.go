// Package report formats reduction results as text tables.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"nanosimsreduce/pkg/analysis"
)

// Render writes the sums, ratios and delta values of one result.
func Render(w io.Writer, r *analysis.Result) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s analysis: %s\n", strings.ToUpper(r.Mode.String()[:1])+r.Mode.String()[1:], r.Header.Source)
	fmt.Fprintf(&b, "Cycles: %d, pixels kept: %s\n", r.Cycles, humanize.Comma(int64(r.Sums.NPixels)))
	fmt.Fprintf(&b, "QSA correction using beta value: %g (Hillion et al., 2008), K = %.6g\n\n",
		r.QSA.Beta(), r.QSA.K())

	b.WriteString(sumsTable(r))
	b.WriteString("\n\n")
	b.WriteString(ratiosTable(r))
	b.WriteString("\n\n")
	b.WriteString(deltasTable(r))
	b.WriteString("\n")

	if r.Standardized != nil {
		b.WriteString("\n")
		b.WriteString(standardizedTable(r))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func newTable(title string, header table.Row) table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(title)
	tbl.AppendHeader(header)
	return tbl
}

func sumsTable(r *analysis.Result) string {
	tbl := newTable("Masked totals", table.Row{"Isotope", "Counts", "sqrt(N)"})
	ref := r.Sums.Reference
	tbl.AppendRow(table.Row{ref.Isotope + " (reference)", humanize.Commaf(round(ref.Sum)), fmt.Sprintf("%.1f", ref.CountingError())})
	for _, m := range r.Sums.Minors {
		tbl.AppendRow(table.Row{m.Isotope, humanize.Commaf(round(m.Sum)), fmt.Sprintf("%.1f", m.CountingError())})
	}
	return tbl.Render()
}

func ratiosTable(r *analysis.Result) string {
	tbl := newTable("Ratios", table.Row{"Ratio", "Measured", "QSA corrected", "1σ stat", "1σ pixel SE", "1σ combined"})
	for _, m := range r.Deltas.Measured().Ratios() {
		tbl.AppendRow(table.Row{
			m.Isotope + "/" + r.Sums.Reference.Isotope,
			fmt.Sprintf("%.6e", m.Initial),
			fmt.Sprintf("%.6e", m.Ratio),
			fmt.Sprintf("%.3e", m.SigmaStat),
			fmt.Sprintf("%.3e", m.SigmaEmpirical),
			fmt.Sprintf("%.3e", m.SigmaCombined),
		})
	}
	return tbl.Render()
}

func deltasTable(r *analysis.Result) string {
	tbl := newTable("Delta values (permil)", table.Row{"Isotope", "Standard ratio", "δ", "±2σ", "Pixel σ"})
	for _, d := range r.Deltas.Values() {
		tbl.AppendRow(table.Row{
			"δ" + d.Isotope,
			fmt.Sprintf("%g", d.StandardRatio),
			fmt.Sprintf("%.2f", d.Delta),
			fmt.Sprintf("%.2f", d.TwoSigma),
			fmt.Sprintf("%.2f", d.PixelStdDev),
		})
	}
	return tbl.Render()
}

func standardizedTable(r *analysis.Result) string {
	values := r.Standardized.Values()
	title := "IMF corrected (permil)"
	if len(values) > 0 && values[0].Standard.Name != "" {
		title = fmt.Sprintf("IMF corrected, standardized to %s (permil)", values[0].Standard.Name)
	}

	tbl := newTable(title, table.Row{"Isotope", "δ measured", "IMF", "δ corrected", "±2σ"})
	for _, v := range values {
		tbl.AppendRow(table.Row{
			"δ" + v.Isotope,
			fmt.Sprintf("%.2f", v.Measured),
			fmt.Sprintf("%.2f", v.IMF),
			fmt.Sprintf("%.2f", v.Corrected),
			fmt.Sprintf("%.2f", v.TwoSigma),
		})
	}
	return tbl.Render()
}

// RenderBatch writes one line per file with its corrected (or, for
// standards, measured) delta values.
func RenderBatch(w io.Writer, results []analysis.JobResult) error {
	tbl := newTable("Batch summary", table.Row{"File", "Mode", "Result"})
	failed := 0
	for _, jr := range results {
		if jr.Err != nil {
			failed++
			tbl.AppendRow(table.Row{jr.Name, "-", "error: " + jr.Err.Error()})
			continue
		}
		tbl.AppendRow(table.Row{jr.Name, jr.Result.Mode.String(), summary(jr.Result)})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d files", len(results)), "", fmt.Sprintf("%d failed", failed)})

	_, err := io.WriteString(w, tbl.Render()+"\n")
	return err
}

func summary(r *analysis.Result) string {
	var parts []string
	if r.Standardized != nil {
		for _, v := range r.Standardized.Values() {
			parts = append(parts, fmt.Sprintf("δ%s = %.2f ± %.2f", v.Isotope, v.Corrected, v.TwoSigma))
		}
	} else {
		for _, d := range r.Deltas.Values() {
			parts = append(parts, fmt.Sprintf("δ%s = %.2f ± %.2f", d.Isotope, d.Delta, d.TwoSigma))
		}
	}
	return strings.Join(parts, ", ")
}

func round(v float64) float64 {
	return math.Round(v)
}
