package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bitmark-inc/covid-monthly/schema"
)

const (
	replaceBatchSize = 1000
)

var (
	ErrNoMonthlyData     = fmt.Errorf("no monthly data")
	ErrMonthlyDataFetch  = fmt.Errorf("fetch monthly data fail")
	ErrMonthlyDecode     = fmt.Errorf("decode monthly data fail")
	ErrEmptyCombinedKey  = errors.New("empty combined key")
	ErrMonthlyDataUpsert = fmt.Errorf("upsert monthly data fail")
)

type MonthlyStore interface {
	// ReplaceMonthly upserts one document per (combined key, month) and
	// returns the number of documents written. Aggregates whose key has no
	// geo record are skipped.
	ReplaceMonthly(runID string, records map[string]schema.GeoRecord, aggregates []schema.MonthlyAggregate) (int, error)
	GetMonthly(combinedKey string) ([]schema.MonthlyAggregate, error)
	GetMonthlyByState(state string) ([]schema.MonthlyDocument, error)
	DeleteMonthlyBefore(month time.Time) (int64, error)
}

func (m *mongoDB) ReplaceMonthly(runID string, records map[string]schema.GeoRecord, aggregates []schema.MonthlyAggregate) (int, error) {
	if len(aggregates) == 0 {
		log.WithFields(log.Fields{"prefix": mongoLogPrefix}).Debug("no record to update")
		return 0, nil
	}

	now := time.Now().UTC().Unix()
	models := make([]mongo.WriteModel, 0, replaceBatchSize)
	written := 0
	skipped := 0

	flush := func() error {
		if len(models) == 0 {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 6*defaultTimeout)
		defer cancel()

		opts := options.BulkWrite().SetOrdered(false)
		_, err := m.collection(schema.MonthlyCollection).BulkWrite(ctx, models, opts)
		if nil != err {
			log.WithFields(log.Fields{"prefix": mongoLogPrefix, "error": err}).Error("replace monthly data")
			return fmt.Errorf("%w: %s", ErrMonthlyDataUpsert, err)
		}
		written += len(models)
		models = models[:0]
		return nil
	}

	for _, a := range aggregates {
		record, ok := records[a.CombinedKey]
		if !ok {
			skipped++
			continue
		}

		doc := schema.MonthlyDocument{
			GeoRecord:       record,
			Month:           a.Month,
			MonthTime:       a.Month.Unix(),
			CumulativeCount: a.CumulativeCount,
			RunID:           runID,
			UpdateTime:      now,
		}
		filter := bson.M{"combined_key": a.CombinedKey, "month_ts": doc.MonthTime}
		models = append(models, mongo.NewReplaceOneModel().SetFilter(filter).SetReplacement(doc).SetUpsert(true))

		if len(models) >= replaceBatchSize {
			if err := flush(); nil != err {
				return written, err
			}
		}
	}
	if err := flush(); nil != err {
		return written, err
	}

	if skipped > 0 {
		log.WithFields(log.Fields{"prefix": mongoLogPrefix, "skipped": skipped}).Warn("monthly data without geo record")
	}
	log.WithFields(log.Fields{"prefix": mongoLogPrefix, "run": runID, "records": written}).Debug("replace monthly data")

	return written, nil
}

func (m *mongoDB) GetMonthly(combinedKey string) ([]schema.MonthlyAggregate, error) {
	if combinedKey == "" {
		return nil, ErrEmptyCombinedKey
	}

	docs, err := m.findMonthly(bson.M{"combined_key": combinedKey})
	if nil != err {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNoMonthlyData
	}

	result := make([]schema.MonthlyAggregate, len(docs))
	for i, d := range docs {
		result[i] = d.Aggregate()
	}
	return result, nil
}

func (m *mongoDB) GetMonthlyByState(state string) ([]schema.MonthlyDocument, error) {
	docs, err := m.findMonthly(bson.M{"province_state": state})
	if nil != err {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNoMonthlyData
	}
	return docs, nil
}

func (m *mongoDB) findMonthly(filter bson.M) ([]schema.MonthlyDocument, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "combined_key", Value: 1}, {Key: "month_ts", Value: 1}})
	cur, err := m.collection(schema.MonthlyCollection).Find(ctx, filter, opts)
	if nil != err {
		log.WithField("prefix", mongoLogPrefix).Errorf("%v: %s", ErrMonthlyDataFetch, err)
		return nil, ErrMonthlyDataFetch
	}
	defer cur.Close(ctx)

	var results []schema.MonthlyDocument
	for cur.Next(ctx) {
		var result schema.MonthlyDocument
		if errDecode := cur.Decode(&result); errDecode != nil {
			log.WithField("prefix", mongoLogPrefix).Errorf("monthly decode with error: %s", errDecode)
			return nil, ErrMonthlyDecode
		}
		result.Month = result.Month.UTC()
		results = append(results, result)
	}
	return results, nil
}

func (m *mongoDB) DeleteMonthlyBefore(month time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	filter := bson.M{"month_ts": bson.D{{Key: "$lt", Value: month.Unix()}}}
	res, err := m.collection(schema.MonthlyCollection).DeleteMany(ctx, filter)
	if err != nil {
		log.WithField("prefix", mongoLogPrefix).Warnf("monthly delete record wih error: %s", err)
		return 0, err
	}
	log.WithFields(log.Fields{"prefix": mongoLogPrefix, "records": res.DeletedCount}).Debug("DeleteMonthlyBefore delete data")
	return res.DeletedCount, nil
}
