// Package excel turns an uploaded manifest workbook into manifest rows.
package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"manifesthub/internal/schema"
)

// ParseManifest reads the first sheet of an xlsx workbook. The first row is
// taken as the header row; each following row becomes one ManifestRow with
// the well-known columns mapped onto fixed fields and every other column
// preserved in Extra. Parsed rows are transient: they carry no ID and no
// upload date until they are saved.
func ParseManifest(r io.Reader) ([]string, []*schema.ManifestRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(cells) < 2 {
		return nil, nil, nil
	}

	headers := cells[0]
	rows := make([]*schema.ManifestRow, 0, len(cells)-1)
	for _, line := range cells[1:] {
		row := &schema.ManifestRow{Extra: make(map[string]string)}
		empty := true
		for i, header := range headers {
			var value string
			if i < len(line) {
				value = line[i]
			}
			if value != "" {
				empty = false
			}
			assignColumn(row, header, value)
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

func assignColumn(row *schema.ManifestRow, header, value string) {
	switch header {
	case schema.HeaderClient:
		row.Client = value
	case schema.HeaderVesselName:
		row.VesselName = value
	case schema.HeaderSupplier:
		row.Supplier = value
	case schema.HeaderShipper:
		row.Shipper = value
	case schema.HeaderPONo:
		row.PONo = value
	case schema.HeaderETA:
		row.ETA = value
	case schema.HeaderStored:
		row.Stored = value
	case "":
		// unnamed columns are dropped, matching the uploaded sheet behaviour
	default:
		row.Extra[header] = value
	}
}
