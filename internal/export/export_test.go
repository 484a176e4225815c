package export

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"machinery-service/internal/machinery/model"
	"machinery-service/internal/subsystem"
)

func sampleResult() model.ReconciliationResult {
	return model.ReconciliationResult{
		DifferentDisplay: []string{"Mooring Winch"},
		MissingDisplay:   []string{"Steering Gear", "Boiler"},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, MissingTable(sampleResult())))

	assert.Equal(t, "Missing Machinery on Vessel\nSteering Gear\nBoiler\n", buf.String())
}

func TestWriteCSV_Summary(t *testing.T) {
	s := model.MissingJobsSummary{
		Rows:  []model.SummaryRow{{System: "Main Engine", Count: 2}, {System: "Pumps", Error: "sheet, missing"}},
		Total: 2,
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, SummaryTable(s)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"Machinery System,Missing Jobs Count,Error",
		"Main Engine,2,",
		`Pumps,0,"sheet, missing"`,
		"Total,2,",
	}, lines)
}

func TestWriteXLSX(t *testing.T) {
	ov := model.Overview{
		VesselName: "Ocean Star",
		TotalJobs:  3,
		JobSources: []model.JobSourceCount{{Source: "PMS", Count: 3}, {Source: "Total", Count: 3}},
		MissingJobs: model.MissingJobsSummary{
			Rows:  []model.SummaryRow{{System: "Mooring", Count: 1}},
			Total: 1,
		},
		Machinery: sampleResult(),
	}
	results := []subsystem.Result{{
		Label:          "Mooring",
		MissingColumns: []string{"UI Job Code", "Title"},
		Missing:        []model.JobRow{{Fields: map[string]string{"UI Job Code": "103", "Title": "Test tension"}}},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, OverviewTables(ov, results)...))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Overview", "Job Sources", "Missing Jobs", "Different Machinery", "Missing Machinery", "Mooring"}, f.GetSheetList())

	v, err := f.GetCellValue("Overview", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Ocean Star", v)

	rows, err := f.GetRows("Mooring")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"UI Job Code", "Title"}, {"103", "Test tension"}}, rows)
}

func TestWriteXLSX_CellError(t *testing.T) {
	wide := Table{Name: "Wide", Headers: make([]string, excelize.MaxColumns+1)}

	var buf bytes.Buffer
	err := WriteXLSX(&buf, Table{Name: "Ok", Headers: []string{"A"}}, wide)
	require.Error(t, err)
	assert.ErrorIs(t, err, excelize.ErrColumnNumber)
	assert.Contains(t, err.Error(), "sheet Wide")
	assert.Zero(t, buf.Len())

	err = SaveXLSX(filepath.Join(t.TempDir(), "out.xlsx"), Table{Name: "Rows", Headers: []string{"A"}, Rows: [][]any{make([]any, excelize.MaxColumns+1)}})
	assert.ErrorIs(t, err, excelize.ErrColumnNumber)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Lifeboat Rescue Boat (A)", sheetName("Lifeboat/Rescue Boat [A]"))
	assert.Len(t, []rune(sheetName(strings.Repeat("x", 40))), 31)
	assert.Equal(t, "Sheet", sheetName("  "))

	used := map[string]int{}
	assert.Equal(t, "Pumps", uniqueSheetName("Pumps", used))
	assert.Equal(t, "Pumps 2", uniqueSheetName("pumps", used))
}
