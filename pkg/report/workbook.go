package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"nanosimsreduce/pkg/analysis"
)

const (
	resultsSheet = "Results"
	errorsSheet  = "Errors"
)

var workbookHeader = []interface{}{
	"File", "Mode", "Isotope", "Reference counts", "Isotope counts", "Pixels",
	"Ratio", "QSA ratio", "1σ combined", "δ (permil)", "2σ (permil)",
	"IMF (permil)", "δ corrected (permil)", "2σ corrected (permil)",
}

// WriteWorkbook stores one row per file and minor isotope in an xlsx
// workbook. Failed files are listed on a separate sheet.
func WriteWorkbook(path string, results []analysis.JobResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &workbookHeader); err != nil {
		return err
	}

	row := 2
	var failed []analysis.JobResult
	for _, jr := range results {
		if jr.Err != nil {
			failed = append(failed, jr)
			continue
		}
		for _, values := range resultRows(jr) {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(resultsSheet, cell, &values); err != nil {
				return err
			}
			row++
		}
	}

	if len(failed) > 0 {
		if _, err := f.NewSheet(errorsSheet); err != nil {
			return err
		}
		header := []interface{}{"File", "Error"}
		if err := f.SetSheetRow(errorsSheet, "A1", &header); err != nil {
			return err
		}
		for i, jr := range failed {
			values := []interface{}{jr.Name, jr.Err.Error()}
			if err := f.SetSheetRow(errorsSheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func resultRows(jr analysis.JobResult) [][]interface{} {
	r := jr.Result
	measured := r.Deltas.Measured().Ratios()

	rows := make([][]interface{}, 0, len(measured))
	for _, m := range measured {
		values := []interface{}{
			jr.Name, r.Mode.String(), m.Isotope,
			r.Sums.Reference.Sum, nil, r.Sums.NPixels,
			m.Initial, m.Ratio, m.SigmaCombined,
			nil, nil, nil, nil, nil,
		}
		if s, ok := r.Sums.Minor(m.Isotope); ok {
			values[4] = s.Sum
		}
		if d, ok := r.Deltas.Delta(m.Isotope); ok {
			values[9] = d.Delta
			values[10] = d.TwoSigma
		}
		if r.Standardized != nil {
			if v, ok := r.Standardized.Value(m.Isotope); ok {
				values[11] = v.IMF
				values[12] = v.Corrected
				values[13] = v.TwoSigma
			}
		}
		rows = append(rows, values)
	}
	return rows
}
