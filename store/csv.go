package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/bitmark-inc/covid-monthly/consts"
	"github.com/bitmark-inc/covid-monthly/schema"
)

// WideCSVWriter - delimited text sink for the monthly wide table
type WideCSVWriter struct {
	missing string
}

func NewWideCSVWriter(missing string) *WideCSVWriter {
	return &WideCSVWriter{
		missing: missing,
	}
}

// Write - header is the geo columns followed by one column per month; a
// missing month is written as the missing marker
func (w *WideCSVWriter) Write(out io.Writer, table schema.WideTable, records map[string]schema.GeoRecord) error {
	cw := csv.NewWriter(out)

	header := make([]string, 0, len(consts.WideHeaderColumns)+len(table.Months))
	header = append(header, consts.WideHeaderColumns...)
	for _, m := range table.Months {
		header = append(header, m.Format(consts.MonthLayout))
	}
	if err := cw.Write(header); nil != err {
		return err
	}

	for _, row := range table.Rows {
		record, ok := records[row.CombinedKey]
		if !ok {
			return fmt.Errorf("no geo record for %q", row.CombinedKey)
		}

		line := make([]string, 0, len(header))
		line = append(line, row.CombinedKey, record.County, record.ProvinceState, record.CountryRegion)
		for _, c := range row.Cells {
			if c.Present {
				line = append(line, strconv.FormatInt(c.Value, 10))
			} else {
				line = append(line, w.missing)
			}
		}
		if err := cw.Write(line); nil != err {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func (w *WideCSVWriter) WriteFile(path string, table schema.WideTable, records map[string]schema.GeoRecord) (err error) {
	f, err := os.Create(path)
	if nil != err {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	if err = w.Write(f, table, records); nil != err {
		return err
	}

	log.WithFields(log.Fields{
		"prefix": "csv",
		"file":   path,
		"rows":   len(table.Rows),
		"months": len(table.Months),
	}).Info("write wide table")
	return nil
}
