package jhu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	log "github.com/sirupsen/logrus"

	"github.com/bitmark-inc/covid-monthly/consts"
	"github.com/bitmark-inc/covid-monthly/schema"
	"github.com/bitmark-inc/covid-monthly/utils"
)

const (
	logPrefix = "jhu"
)

var (
	ErrNoCombinedKey  = fmt.Errorf("no %s column", consts.CombinedKeyColumn)
	ErrNoDateColumn   = errors.New("no report date column")
	ErrInvalidCount   = errors.New("invalid cumulative count")
	ErrUnexpectedCode = errors.New("unexpected response status")
)

// Source - interface to load the daily cumulative time series
type Source interface {
	Fetch(ctx context.Context) ([]schema.DailyObservation, error)
}

type URLSource struct {
	URL    string
	client *http.Client
}

func (s *URLSource) Fetch(ctx context.Context) ([]schema.DailyObservation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if nil != err {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if nil != err {
		log.WithFields(log.Fields{"prefix": logPrefix, "url": s.URL, "error": err}).Error("get jhu time series csv")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.WithFields(log.Fields{"prefix": logPrefix, "url": s.URL, "status": resp.StatusCode}).Error("get jhu time series csv")
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedCode, resp.StatusCode)
	}

	return ParseWide(resp.Body)
}

type FileSource struct {
	Path string
}

func (s *FileSource) Fetch(ctx context.Context) ([]schema.DailyObservation, error) {
	f, err := os.Open(s.Path)
	if nil != err {
		log.WithFields(log.Fields{"prefix": logPrefix, "file": s.Path, "error": err}).Error("open jhu time series csv")
		return nil, err
	}
	defer f.Close()

	return ParseWide(f)
}

// ParseWide - read a wide time series table, one row per combined key and one
// column per report date, and melt it into daily observations. Blank cells
// are skipped; non-numeric or negative cells are logged and skipped.
func ParseWide(r io.Reader) ([]schema.DailyObservation, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if nil != df.Err {
		log.WithFields(log.Fields{"prefix": logPrefix, "error": df.Err}).Error("read time series csv")
		return nil, df.Err
	}

	return Melt(df)
}

// Melt - wide to long. The dataframe must hold a combined key column and at
// least one M/D/YY column; any other column is ignored.
func Melt(df dataframe.DataFrame) ([]schema.DailyObservation, error) {
	names := df.Names()

	keyIndex := -1
	dateIndexes := make([]int, 0, len(names))
	dates := make([]time.Time, 0, len(names))
	for i, name := range names {
		if name == consts.CombinedKeyColumn {
			keyIndex = i
			continue
		}
		if d, err := utils.ParseReportDate(name); err == nil {
			dateIndexes = append(dateIndexes, i)
			dates = append(dates, d)
		}
	}

	if keyIndex < 0 {
		return nil, ErrNoCombinedKey
	}
	if len(dateIndexes) == 0 {
		return nil, ErrNoDateColumn
	}

	records := df.Records()
	observations := make([]schema.DailyObservation, 0, df.Nrow()*len(dateIndexes))
	skipped := 0
	for rowNumber, row := range records[1:] {
		key := row[keyIndex]
		for j, col := range dateIndexes {
			if isBlank(row[col]) {
				continue
			}

			count, err := ParseCount(row[col])
			if nil != err {
				skipped++
				log.WithFields(log.Fields{
					"prefix": logPrefix,
					"row":    rowNumber + 1,
					"column": names[col],
					"key":    key,
					"error":  err,
				}).Warn("cast cumulative count fail")
				continue
			}

			observations = append(observations, schema.DailyObservation{
				CombinedKey:     key,
				Date:            dates[j],
				CumulativeCount: count,
			})
		}
	}

	log.WithFields(log.Fields{
		"prefix":       logPrefix,
		"rows":         df.Nrow(),
		"dates":        len(dateIndexes),
		"observations": len(observations),
		"skipped":      skipped,
	}).Debug("melt time series")

	return observations, nil
}

func isBlank(value string) bool {
	switch strings.TrimSpace(value) {
	case "", "NaN", "NA":
		return true
	}
	return false
}

// ParseCount - a non-negative whole number. Values written as floats, e.g.
// `12.0`, are accepted when they have no fraction.
func ParseCount(value string) (int64, error) {
	value = strings.TrimSpace(value)

	count, err := strconv.ParseInt(value, 10, 64)
	if nil != err {
		f, ferr := strconv.ParseFloat(value, 64)
		if nil != ferr || f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidCount, value)
		}
		count = int64(f)
	}

	if count < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCount, value)
	}
	return count, nil
}

// NewURLSource - download the time series over http
func NewURLSource(url string, timeout time.Duration) Source {
	if timeout <= 0 {
		timeout = consts.DefaultSourceTimeout
	}
	return &URLSource{
		URL: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewFileSource - read the time series from a local csv file
func NewFileSource(path string) Source {
	return &FileSource{
		Path: path,
	}
}
