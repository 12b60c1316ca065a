package main

import (
	"bytes"
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"

	storemocks "github.com/bitmark-inc/covid-monthly/api/mocks"
	"github.com/bitmark-inc/covid-monthly/external/mocks"
	"github.com/bitmark-inc/covid-monthly/geo"
	"github.com/bitmark-inc/covid-monthly/schema"
	"github.com/bitmark-inc/covid-monthly/store"
	"github.com/bitmark-inc/covid-monthly/utils"
)

func day(year int, m time.Month, d int) time.Time {
	return time.Date(year, m, d, 0, 0, 0, 0, time.UTC)
}

func testObservations() []schema.DailyObservation {
	return []schema.DailyObservation{
		{CombinedKey: "Autauga, Alabama, US", Date: day(2020, time.March, 30), CumulativeCount: 1},
		{CombinedKey: "Autauga, Alabama, US", Date: day(2020, time.March, 31), CumulativeCount: 2},
		{CombinedKey: "Autauga, Alabama, US", Date: day(2020, time.April, 2), CumulativeCount: 4},
		{CombinedKey: "Fairfield,Connecticut ,US", Date: day(2020, time.April, 1), CumulativeCount: 10},
		{CombinedKey: "Conn, US", Date: day(2020, time.March, 31), CumulativeCount: 85},
		{CombinedKey: "Conn, US", Date: day(2020, time.April, 29), CumulativeCount: 2300},
		{CombinedKey: "Conn, US", Date: day(2020, time.April, 30), CumulativeCount: 2257},
		{CombinedKey: "a, b, c, d", Date: day(2020, time.April, 1), CumulativeCount: 7},
		{CombinedKey: "   ", Date: day(2020, time.April, 1), CumulativeCount: 3},
	}
}

var testAliases = utils.KeyAliases{"Conn, US": "Connecticut, US"}

const expectedCSV = "combined_key,county,province_state,country_region,2020-03-01,2020-04-01\n" +
	"\"Autauga, Alabama, US\",Autauga,Alabama,US,2,4\n" +
	"\"Connecticut, US\",,Connecticut,US,85,2300\n" +
	"\"Fairfield, Connecticut, US\",Fairfield,Connecticut,US,NA,10\n"

func counters(scope tally.TestScope) map[string]int64 {
	result := make(map[string]int64)
	for _, c := range scope.Snapshot().Counters() {
		result[c.Name()] = c.Value()
	}
	return result
}

func tempOutput(t *testing.T) (string, func()) {
	dir, err := ioutil.TempDir("", "crawler")
	require.NoError(t, err)
	return filepath.Join(dir, "monthly.csv"), func() { os.RemoveAll(dir) }
}

func TestMonthlyCrawlerRun(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	output, cleanup := tempOutput(t)
	defer cleanup()

	source := mocks.NewMockSource(ctl)
	source.EXPECT().Fetch(gomock.Any()).Return(testObservations(), nil).Times(1)

	monthly := storemocks.NewMockMongoStore(ctl)
	monthly.EXPECT().ReplaceMonthly(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(runID string, records map[string]schema.GeoRecord, aggregates []schema.MonthlyAggregate) (int, error) {
			assert.NotEmpty(t, runID)
			assert.Len(t, records, 3)
			assert.Equal(t, schema.LevelState, records["Connecticut, US"].Level)
			assert.Equal(t, "Fairfield", records["Fairfield, Connecticut, US"].County)
			assert.Equal(t, []schema.MonthlyAggregate{
				{CombinedKey: "Autauga, Alabama, US", Month: day(2020, time.March, 1), CumulativeCount: 2},
				{CombinedKey: "Autauga, Alabama, US", Month: day(2020, time.April, 1), CumulativeCount: 4},
				{CombinedKey: "Connecticut, US", Month: day(2020, time.March, 1), CumulativeCount: 85},
				{CombinedKey: "Connecticut, US", Month: day(2020, time.April, 1), CumulativeCount: 2300},
				{CombinedKey: "Fairfield, Connecticut, US", Month: day(2020, time.April, 1), CumulativeCount: 10},
			}, aggregates)
			return len(aggregates), nil
		}).Times(1)

	scope := tally.NewTestScope("crawler", nil)
	c := newMonthlyCrawler(source, geo.NewKeyResolver("US"), testAliases,
		store.NewWideCSVWriter("NA"), output, monthly, scope)

	err := c.Run(context.Background())
	require.NoError(t, err)

	data, err := ioutil.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, expectedCSV, string(data))

	assert.Equal(t, 9, c.last.Observations)
	assert.Equal(t, 3, c.last.Keys)
	assert.Equal(t, 1, c.last.Malformed)
	assert.Equal(t, 1, c.last.Regressions)
	assert.Equal(t, 5, c.last.Written)
	assert.Len(t, c.last.Table.Months, 2)

	assert.Equal(t, map[string]int64{
		"crawler.observations": 9,
		"crawler.keys":         3,
		"crawler.malformed":    1,
		"crawler.regressions":  1,
		"crawler.aggregates":   5,
		"crawler.written":      5,
	}, counters(scope))
}

func TestMonthlyCrawlerWithoutStore(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	output, cleanup := tempOutput(t)
	defer cleanup()

	source := mocks.NewMockSource(ctl)
	source.EXPECT().Fetch(gomock.Any()).Return(testObservations(), nil).Times(1)

	c := newMonthlyCrawler(source, geo.NewKeyResolver("US"), testAliases,
		store.NewWideCSVWriter("NA"), output, nil, nil)

	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, 0, c.last.Written)

	data, err := ioutil.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, expectedCSV, string(data))
}

func TestMonthlyCrawlerStrict(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	output, cleanup := tempOutput(t)
	defer cleanup()

	source := mocks.NewMockSource(ctl)
	source.EXPECT().Fetch(gomock.Any()).Return(testObservations(), nil).Times(1)

	// no store call is expected
	monthly := storemocks.NewMockMongoStore(ctl)

	c := newMonthlyCrawler(source, geo.NewKeyResolver("US"), testAliases,
		store.NewWideCSVWriter("NA"), output, monthly, nil)
	c.strict = true

	err := c.Run(context.Background())
	assert.Error(t, err)
	assert.True(t, errors.Is(err, geo.ErrMalformedKey))

	var malformed *geo.MalformedKeyErrors
	assert.True(t, errors.As(err, &malformed))
	assert.Equal(t, []string{"a, b, c, d"}, malformed.Keys())

	_, err = os.Stat(output)
	assert.True(t, os.IsNotExist(err), "no output is written in strict mode")
}

func TestMonthlyCrawlerFetchError(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	fetchErr := errors.New("connection refused")
	source := mocks.NewMockSource(ctl)
	source.EXPECT().Fetch(gomock.Any()).Return(nil, fetchErr).Times(1)

	c := newMonthlyCrawler(source, geo.NewKeyResolver("US"), nil,
		store.NewWideCSVWriter("NA"), "", nil, nil)

	err := c.Run(context.Background())
	assert.True(t, errors.Is(err, fetchErr))
}

func TestMonthlyCrawlerStoreError(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	source := mocks.NewMockSource(ctl)
	source.EXPECT().Fetch(gomock.Any()).Return(testObservations(), nil).Times(1)

	monthly := storemocks.NewMockMongoStore(ctl)
	monthly.EXPECT().ReplaceMonthly(gomock.Any(), gomock.Any(), gomock.Any()).Return(0, store.ErrMonthlyDataUpsert).Times(1)

	c := newMonthlyCrawler(source, geo.NewKeyResolver("US"), testAliases,
		store.NewWideCSVWriter("NA"), "", monthly, nil)

	err := c.Run(context.Background())
	assert.Equal(t, store.ErrMonthlyDataUpsert, err)
}

func TestMonthlyCrawlerRetention(t *testing.T) {
	acrossYear := []schema.DailyObservation{
		{CombinedKey: "Autauga, Alabama, US", Date: day(2020, time.November, 30), CumulativeCount: 30},
		{CombinedKey: "Autauga, Alabama, US", Date: day(2020, time.December, 31), CumulativeCount: 42},
		{CombinedKey: "Autauga, Alabama, US", Date: day(2021, time.January, 31), CumulativeCount: 50},
		{CombinedKey: "Autauga, Alabama, US", Date: day(2021, time.February, 28), CumulativeCount: 64},
	}

	testCases := []struct {
		name         string
		observations []schema.DailyObservation
		retention    int
		cutoff       time.Time
	}{
		{"latest month only", testObservations(), 1, day(2020, time.April, 1)},
		{"two months", testObservations(), 2, day(2020, time.March, 1)},
		{"window into the previous year", acrossYear, 3, day(2020, time.December, 1)},
		{"window of a full year", acrossYear, 12, day(2020, time.March, 1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctl := gomock.NewController(t)
			defer ctl.Finish()

			source := mocks.NewMockSource(ctl)
			source.EXPECT().Fetch(gomock.Any()).Return(tc.observations, nil).Times(1)

			monthly := storemocks.NewMockMongoStore(ctl)
			gomock.InOrder(
				monthly.EXPECT().ReplaceMonthly(gomock.Any(), gomock.Any(), gomock.Any()).Return(len(tc.observations), nil),
				monthly.EXPECT().DeleteMonthlyBefore(tc.cutoff).Return(int64(12), nil),
			)

			c := newMonthlyCrawler(source, geo.NewKeyResolver("US"), testAliases,
				store.NewWideCSVWriter("NA"), "", monthly, nil)
			c.retention = tc.retention

			require.NoError(t, c.Run(context.Background()))
		})
	}
}

func TestMonthlyCrawlerNoRetention(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	source := mocks.NewMockSource(ctl)
	source.EXPECT().Fetch(gomock.Any()).Return(testObservations(), nil).Times(1)

	// DeleteMonthlyBefore is not expected
	monthly := storemocks.NewMockMongoStore(ctl)
	monthly.EXPECT().ReplaceMonthly(gomock.Any(), gomock.Any(), gomock.Any()).Return(5, nil).Times(1)

	c := newMonthlyCrawler(source, geo.NewKeyResolver("US"), testAliases,
		store.NewWideCSVWriter("NA"), "", monthly, nil)

	require.NoError(t, c.Run(context.Background()))
}

type cronFunc func(ctx context.Context) error

func (f cronFunc) Run(ctx context.Context) error {
	return f(ctx)
}

func TestRunJob(t *testing.T) {
	calls := 0
	err := runJob(context.Background(), "ok", cronFunc(func(ctx context.Context) error {
		calls++
		return nil
	}))
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)

	jobErr := errors.New("source unavailable")
	err = runJob(context.Background(), "failing", cronFunc(func(ctx context.Context) error {
		return jobErr
	}))
	assert.Equal(t, jobErr, err)
}

func TestBindFlag(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("retention", 0, "")

	assert.NoError(t, bindFlag(flags, "test.retention", "retention"))
	require.NoError(t, flags.Parse([]string{"--retention", "6"}))
	assert.Equal(t, 6, viper.GetInt("test.retention"))

	err := bindFlag(flags, "test.missing", "retension")
	assert.True(t, errors.Is(err, ErrUnknownFlag))
}

func TestDecomposeCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := decompose(cmd, []string{"Fairfield,Connecticut ,US", "Connecticut, US", "US"})
	require.NoError(t, err)
	assert.Equal(t,
		"Fairfield, Connecticut, US\tcounty\tFairfield\tConnecticut\tUS\n"+
			"Connecticut, US\tstate\t\tConnecticut\tUS\n"+
			"US\tcountry\t\t\tUS\n",
		out.String())
	assert.Empty(t, errOut.String())
}

func TestDecomposeCommandMalformed(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	err := decompose(cmd, []string{"a, b, c, d", "Connecticut, US"})
	assert.True(t, errors.Is(err, geo.ErrMalformedKey))
	assert.Equal(t, "Connecticut, US\tstate\t\tConnecticut\tUS\n", out.String())
	assert.Contains(t, errOut.String(), `"a, b, c, d" has 3 delimiters`)
}
