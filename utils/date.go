package utils

import (
	"time"

	"github.com/bitmark-inc/covid-monthly/consts"
)

// ParseReportDate - parse a M/D/YY column header into UTC midnight
func ParseReportDate(s string) (time.Time, error) {
	return time.ParseInLocation(consts.ReportDateLayout, CleanField(s), time.UTC)
}
