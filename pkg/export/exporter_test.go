package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartDataset() Dataset {
	return Dataset{
		Headers: []string{"Room", "Bench", "Seat", "Roll No", "Name"},
		Rows: []map[string]string{
			{"Room": "R-101", "Bench": "C1R1", "Seat": "1", "Roll No": "101", "Name": "Alice"},
			{"Room": "R-101", "Bench": "C1R1", "Seat": "2", "Roll No": "103", "Name": "Carol"},
			{"Room": "R-202", "Bench": "C1R1", "Seat": "1", "Roll No": "102", "Name": "Bob"},
		},
		GroupBy: "Room",
	}
}

func TestCSVExporterStaysFlat(t *testing.T) {
	payload, err := NewCSVExporter().Render(chartDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 4, "header plus one line per seat")
	assert.Equal(t, "Room,Bench,Seat,Roll No,Name", lines[0])
	assert.Equal(t, "R-101,C1R1,1,101,Alice", lines[1])
	assert.Equal(t, "R-202,C1R1,1,102,Bob", lines[3])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRendersRoomSections(t *testing.T) {
	payload, err := NewPDFExporter().Render(chartDataset(), "Seating Chart: Midterm")
	require.NoError(t, err)
	require.NotEmpty(t, payload)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestPDFExporterFlatWhenGroupHeaderMissing(t *testing.T) {
	data := chartDataset()
	data.GroupBy = "Building"
	payload, err := NewPDFExporter().Render(data, "")
	require.NoError(t, err)
	require.NotEmpty(t, payload)
}
