package provider

import (
	"strconv"
	"strings"
)

var reportStatuses = map[int]string{
	1:  "DELIVERED",
	2:  "BUFFERED",
	3:  "FAILED",
	5:  "EXPIRED",
	6:  "REJECTED",
	7:  "ERROR",
	11: "UNKNOWN",
	12: "UNKNOWN",
}

// parseReports decodes the "count#record#record" client report format shared
// by the ClientDR style gateways. Records starting with -1 are incoming
// messages, the others are delivery receipts.
//
//	INCOMING=2#1128173:447111111111:447000000000:1:0:1180019698:AF31C0D:#-1:447111111112:447000000003:1::1180019700::48656C6C6F
func parseReports(content string) ([]Report, bool) {
	content = strings.TrimSpace(content)

	if content == "0#" {
		return []Report{}, true
	}
	if !strings.Contains(content, "#") {
		return nil, false
	}

	records := strings.Split(content, "#")[1:]
	reports := make([]Report, 0, len(records))

	for _, rec := range records {
		rec = strings.TrimSpace(rec)
		if rec == "" {
			continue
		}

		f := strings.Split(rec, ":")
		field := func(i int) string {
			if i < len(f) {
				return f[i]
			}
			return ""
		}

		if field(0) == "-1" {
			reports = append(reports, Report{
				Type:        ReportTypeIncoming,
				Source:      field(1),
				Destination: field(2),
				DataCoding:  field(3),
				DateTime:    field(5),
				UDH:         field(6),
				Message:     field(7),
			})
			continue
		}

		status := "UNKNOWN"
		if code, err := strconv.Atoi(field(3)); err == nil {
			if s, ok := reportStatuses[code]; ok {
				status = s
			}
		}

		reports = append(reports, Report{
			Type:        ReportTypeDelivery,
			MessageID:   field(0),
			Source:      field(1),
			Destination: field(2),
			Status:      status,
			ErrorCode:   field(4),
			DateTime:    field(5),
			UserRef:     field(6),
		})
	}

	return reports, true
}
