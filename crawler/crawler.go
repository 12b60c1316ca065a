package main

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"

	"github.com/bitmark-inc/covid-monthly/consts"
	"github.com/bitmark-inc/covid-monthly/external/jhu"
	"github.com/bitmark-inc/covid-monthly/geo"
	"github.com/bitmark-inc/covid-monthly/schema"
	"github.com/bitmark-inc/covid-monthly/series"
	"github.com/bitmark-inc/covid-monthly/store"
	"github.com/bitmark-inc/covid-monthly/utils"
)

type Cron interface {
	Run(ctx context.Context) error
}

// runJob - run a cron job once and log how long it took
func runJob(ctx context.Context, name string, job Cron) error {
	logger := log.WithFields(log.Fields{
		"prefix": logPrefix,
		"job":    name,
	})

	start := time.Now()
	if err := job.Run(ctx); nil != err {
		logger.WithFields(log.Fields{
			"elapsed": time.Since(start),
			"error":   err,
		}).Error("cron job failed")
		return err
	}

	logger.WithField("elapsed", time.Since(start)).Info("cron job done")
	return nil
}

// RunResult - summary of one crawler run
type RunResult struct {
	RunID        string
	Observations int
	Keys         int
	Malformed    int
	Regressions  int
	Aggregates   int
	Written      int
	Table        schema.WideTable
}

type monthlyCrawler struct {
	source    jhu.Source
	resolver  *geo.KeyResolver
	aliases   utils.KeyAliases
	writer    *store.WideCSVWriter
	output    string
	monthly   store.MonthlyStore
	retention int
	strict    bool
	scope     tally.Scope

	last RunResult
}

func (c *monthlyCrawler) Run(ctx context.Context) error {
	result := RunResult{RunID: uuid.New().String()}
	logger := log.WithFields(log.Fields{
		"prefix": logPrefix,
		"run_id": result.RunID,
	})

	observations, err := c.source.Fetch(ctx)
	if nil != err {
		sentry.CaptureException(err)
		return fmt.Errorf("fetch time series: %w", err)
	}
	result.Observations = len(observations)
	c.scope.Counter("observations").Inc(int64(len(observations)))

	observations = c.cleanKeys(observations)

	keys := make([]string, 0, len(observations))
	for _, o := range observations {
		keys = append(keys, o.CombinedKey)
	}

	records, malformed := c.resolver.DecomposeAll(keys)
	result.Keys = len(records)
	c.scope.Counter("keys").Inc(int64(len(records)))

	if malformed != nil {
		result.Malformed = malformed.Len()
		c.scope.Counter("malformed").Inc(int64(malformed.Len()))
		logger.WithFields(log.Fields{
			"count":  malformed.Len(),
			"sample": malformed.Sample(consts.MalformedKeySampleSize),
		}).Warn("reject malformed combined keys")
		sentry.CaptureException(malformed)

		if c.strict {
			return malformed
		}
		observations = keepResolved(observations, records)
	}

	result.Regressions = series.CountRegressions(observations)
	c.scope.Counter("regressions").Inc(int64(result.Regressions))
	logger.WithField("count", result.Regressions).Debug("cumulative counts lower than an earlier report")

	aggregates := series.AggregateMonthly(observations)
	result.Aggregates = len(aggregates)
	c.scope.Counter("aggregates").Inc(int64(len(aggregates)))

	result.Table = series.WideFromMonthly(aggregates)

	if c.output != "" {
		if err := c.writer.WriteFile(c.output, result.Table, records); nil != err {
			sentry.CaptureException(err)
			return fmt.Errorf("write %s: %w", c.output, err)
		}
	}

	if c.monthly != nil {
		written, err := c.monthly.ReplaceMonthly(result.RunID, records, aggregates)
		if nil != err {
			sentry.CaptureException(err)
			return err
		}
		result.Written = written
		c.scope.Counter("written").Inc(int64(written))

		if err := c.prune(logger, result.Table.Months); nil != err {
			sentry.CaptureException(err)
			return err
		}
	}

	logger.WithFields(log.Fields{
		"observations": result.Observations,
		"keys":         result.Keys,
		"malformed":    result.Malformed,
		"months":       len(result.Table.Months),
		"written":      result.Written,
	}).Info("monthly crawler finished")

	c.last = result
	return nil
}

// cleanKeys normalises every combined key and applies the alias table.
// Observations whose key is blank after cleaning are dropped.
func (c *monthlyCrawler) cleanKeys(observations []schema.DailyObservation) []schema.DailyObservation {
	cleaned := make([]schema.DailyObservation, 0, len(observations))
	blank := 0
	for _, o := range observations {
		o.CombinedKey = c.aliases.Resolve(utils.CleanCombinedKey(o.CombinedKey))
		if o.CombinedKey == "" {
			blank++
			continue
		}
		cleaned = append(cleaned, o)
	}

	if blank > 0 {
		log.WithFields(log.Fields{
			"prefix": logPrefix,
			"count":  blank,
		}).Warn("drop observations without combined key")
	}
	return cleaned
}

// prune removes stored months older than the retention window, counted back
// from the latest month of this run
func (c *monthlyCrawler) prune(logger *log.Entry, months []time.Time) error {
	if c.retention <= 0 || len(months) == 0 {
		return nil
	}

	cutoff := months[len(months)-1].AddDate(0, 1-c.retention, 0)
	deleted, err := c.monthly.DeleteMonthlyBefore(cutoff)
	if nil != err {
		return err
	}

	logger.WithFields(log.Fields{
		"before":  cutoff.Format(consts.MonthLayout),
		"deleted": deleted,
	}).Info("prune monthly data")
	return nil
}

func keepResolved(observations []schema.DailyObservation, records map[string]schema.GeoRecord) []schema.DailyObservation {
	kept := observations[:0]
	for _, o := range observations {
		if _, ok := records[o.CombinedKey]; ok {
			kept = append(kept, o)
		}
	}
	return kept
}

// newMonthlyCrawler - cron job producing the monthly wide table
func newMonthlyCrawler(
	source jhu.Source,
	resolver *geo.KeyResolver,
	aliases utils.KeyAliases,
	writer *store.WideCSVWriter,
	output string,
	monthly store.MonthlyStore,
	scope tally.Scope) *monthlyCrawler {
	if scope == nil {
		scope = tally.NoopScope
	}
	return &monthlyCrawler{
		source:   source,
		resolver: resolver,
		aliases:  aliases,
		writer:   writer,
		output:   output,
		monthly:  monthly,
		scope:    scope,
	}
}
