package excel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseManifest(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"Client", "Vessel Name", "Supplier", "Shipper", "PO No", "Q'ty", "ETA", "Stored"},
		{"ACME", "MSC Busan", "Hanjin Parts", "K-Line", "PO-001", "12", "2026-02-01", "Y"},
		{"ACME", "HMM Algeciras", "", "Samsun Co", "PO-002", "3", "", "N"},
	})

	headers, rows, err := ParseManifest(buf)
	require.NoError(t, err)
	assert.Len(t, headers, 8)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "ACME", first.Client)
	assert.Equal(t, "MSC Busan", first.VesselName)
	assert.Equal(t, "Hanjin Parts", first.Supplier)
	assert.Equal(t, "PO-001", first.PONo)
	assert.Equal(t, "2026-02-01", first.ETA)
	assert.Equal(t, "Y", first.Stored)
	assert.Equal(t, "12", first.Extra["Q'ty"], "unknown columns pass through Extra")
	assert.Empty(t, first.ID, "parsed rows are transient")
	assert.False(t, first.IsMapped)

	second := rows[1]
	assert.Equal(t, "HMM Algeciras", second.VesselName)
	assert.Empty(t, second.Supplier)
}

func TestParseManifestHeaderOnly(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"Client", "Vessel Name"},
	})

	headers, rows, err := ParseManifest(buf)
	require.NoError(t, err)
	assert.Nil(t, headers)
	assert.Empty(t, rows)
}

func TestParseManifestSkipsBlankLines(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"Client", "Vessel Name"},
		{"", ""},
		{"ACME", "ONE Cosmos"},
	})

	_, rows, err := ParseManifest(buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ONE Cosmos", rows[0].VesselName)
}

func TestParseManifestRejectsGarbage(t *testing.T) {
	_, _, err := ParseManifest(bytes.NewReader([]byte("not a workbook")))
	assert.Error(t, err)
}
