package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bitmark-inc/covid-monthly/consts"
	"github.com/bitmark-inc/covid-monthly/geo"
	"github.com/bitmark-inc/covid-monthly/schema"
	"github.com/bitmark-inc/covid-monthly/series"
	"github.com/bitmark-inc/covid-monthly/store"
	"github.com/bitmark-inc/covid-monthly/utils"
)

type wideRow struct {
	schema.GeoRecord
	Cells []schema.Cell `json:"cells"`
}

type wideResponse struct {
	Months []string  `json:"months"`
	Rows   []wideRow `json:"rows"`
}

func formatMonths(months []time.Time) []string {
	result := make([]string, len(months))
	for i, m := range months {
		result[i] = m.Format(consts.MonthLayout)
	}
	return result
}

// resolveKey reads the `key` query, cleans it and decomposes it. It aborts
// the request and returns false when the key is absent or malformed.
func (s *Server) resolveKey(c *gin.Context) (schema.GeoRecord, bool) {
	key := utils.CleanCombinedKey(c.Query("key"))
	if key == "" {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters)
		return schema.GeoRecord{}, false
	}

	record, err := s.resolver.Decompose(key)
	if nil != err {
		if errors.Is(err, geo.ErrMalformedKey) {
			abortWithEncoding(c, http.StatusBadRequest, errorMalformedKey, err)
		} else {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return schema.GeoRecord{}, false
	}
	return record, true
}

func (s *Server) monthlyAggregates(c *gin.Context, key string) ([]schema.MonthlyAggregate, bool) {
	aggregates, err := s.mongoStore.GetMonthly(key)
	if nil != err {
		if err == store.ErrNoMonthlyData {
			abortWithEncoding(c, http.StatusNotFound, errorNoMonthlyData)
		} else {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return nil, false
	}
	return aggregates, true
}

func (s *Server) decompose(c *gin.Context) {
	record, ok := s.resolveKey(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": record})
}

func (s *Server) monthly(c *gin.Context) {
	record, ok := s.resolveKey(c)
	if !ok {
		return
	}

	aggregates, ok := s.monthlyAggregates(c, record.CombinedKey)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"record":  record,
		"monthly": aggregates,
	})
}

func (s *Server) monthlyIncrease(c *gin.Context) {
	record, ok := s.resolveKey(c)
	if !ok {
		return
	}

	aggregates, ok := s.monthlyAggregates(c, record.CombinedKey)
	if !ok {
		return
	}

	increase := series.MonthlyIncrease(series.WideFromMonthly(aggregates))
	var cells []schema.Cell
	if len(increase.Rows) > 0 {
		cells = increase.Rows[0].Cells
	}

	c.JSON(http.StatusOK, gin.H{
		"record":   record,
		"months":   formatMonths(increase.Months),
		"increase": cells,
	})
}

func (s *Server) stateWide(c *gin.Context) {
	state := utils.CleanField(c.Param("state"))
	if state == "" {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters)
		return
	}

	cacheKey := "wide:" + state
	if cached, found := s.cache.Get(cacheKey); found {
		c.JSON(http.StatusOK, cached)
		return
	}

	docs, err := s.mongoStore.GetMonthlyByState(state)
	if nil != err {
		if err == store.ErrNoMonthlyData {
			abortWithEncoding(c, http.StatusNotFound, errorNoMonthlyData)
		} else {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return
	}

	records := make(map[string]schema.GeoRecord)
	aggregates := make([]schema.MonthlyAggregate, len(docs))
	for i, d := range docs {
		records[d.CombinedKey] = d.GeoRecord
		aggregates[i] = d.Aggregate()
	}

	table := series.WideFromMonthly(aggregates)
	resp := wideResponse{
		Months: formatMonths(table.Months),
		Rows:   make([]wideRow, len(table.Rows)),
	}
	for i, row := range table.Rows {
		resp.Rows[i] = wideRow{
			GeoRecord: records[row.CombinedKey],
			Cells:     row.Cells,
		}
	}

	s.cache.SetDefault(cacheKey, resp)
	c.JSON(http.StatusOK, resp)
}
