// Package clipboard parses port schedule tables pasted from the carrier
// websites. The pasted text is tab separated with one vessel call per line.
package clipboard

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"manifesthub/internal/schema"
)

var dmyDate = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})`)

// DecodeText returns the pasted bytes as UTF-8. Schedule tables copied from
// older Korean port sites arrive EUC-KR encoded; anything already valid
// UTF-8 passes through unchanged.
func DecodeText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

// ParseSchedules extracts schedule records for one port from pasted text.
// Lines with fewer than five tab-separated columns are ignored, as is the
// header line. Column layout: vessel, -, -, arrival, departure, service.
func ParseSchedules(port, text string) []schema.ScheduleRecord {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 {
		return nil
	}

	var records []schema.ScheduleRecord
	for _, line := range lines {
		parts := strings.Split(strings.TrimRight(line, "\r"), "\t")
		if len(parts) < 5 {
			continue
		}
		vessel := strings.TrimSpace(parts[0])
		if vessel == "" || vessel == "Vessel" {
			continue
		}
		var service string
		if len(parts) > 5 {
			service = strings.TrimSpace(parts[5])
		}
		records = append(records, schema.ScheduleRecord{
			Port:    port,
			Vessel:  vessel,
			ETA:     FormatDate(strings.TrimSpace(parts[3])),
			ETD:     FormatDate(strings.TrimSpace(parts[4])),
			Service: service,
		})
	}
	return records
}

// FormatDate rewrites a DD/MM/YYYY timestamp to YYYY-MM-DD so that the
// lexicographic order of stored ETAs coincides with chronological order.
// Empty input becomes the "-" sentinel; anything unrecognized passes
// through untouched.
func FormatDate(dateStr string) string {
	if dateStr == "" {
		return schema.ETAUnknown
	}
	m := dmyDate.FindStringSubmatch(dateStr)
	if m == nil {
		return dateStr
	}
	return m[3] + "-" + m[2] + "-" + m[1]
}
