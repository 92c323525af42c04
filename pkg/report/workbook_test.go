package report

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"nanosimsreduce/pkg/analysis"
)

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	results := []analysis.JobResult{
		{Name: "idp.im", Result: testResult(t, analysis.Sample)},
		{Name: "std.im", Result: testResult(t, analysis.Standard)},
		{Name: "bad.im", Err: errors.New("import failed")},
	}
	require.NoError(t, WriteWorkbook(path, results))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(resultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "File", rows[0][0])
	assert.Equal(t, []string{"idp.im", "sample", "17O"}, rows[1][:3])
	assert.Equal(t, []string{"idp.im", "sample", "18O"}, rows[2][:3])
	assert.Equal(t, []string{"std.im", "standard", "17O"}, rows[3][:3])
	assert.Len(t, rows[1], len(workbookHeader))

	errRows, err := f.GetRows(errorsSheet)
	require.NoError(t, err)
	require.Len(t, errRows, 2)
	assert.Equal(t, []string{"bad.im", "import failed"}, errRows[1])
}

func TestWriteWorkbookWithoutFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, WriteWorkbook(path, []analysis.JobResult{
		{Name: "idp.im", Result: testResult(t, analysis.Sample)},
	}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{resultsSheet}, f.GetSheetList())
}
