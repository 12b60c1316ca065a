package store

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/covid-monthly/schema"
)

func testTable() (schema.WideTable, map[string]schema.GeoRecord) {
	table := schema.WideTable{
		Months: []time.Time{
			time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2020, time.April, 1, 0, 0, 0, 0, time.UTC),
		},
		Rows: []schema.WideRow{
			{CombinedKey: "Connecticut, US", Cells: []schema.Cell{{Value: 85, Present: true}, {}}},
			{CombinedKey: "Fairfield, Connecticut, US", Cells: []schema.Cell{{Value: 0, Present: true}, {Value: 500, Present: true}}},
		},
	}
	records := map[string]schema.GeoRecord{
		"Connecticut, US": {
			CombinedKey: "Connecticut, US", ProvinceState: "Connecticut", CountryRegion: "US", Level: schema.LevelState,
		},
		"Fairfield, Connecticut, US": {
			CombinedKey: "Fairfield, Connecticut, US", County: "Fairfield", ProvinceState: "Connecticut", CountryRegion: "US", Level: schema.LevelCounty,
		},
	}
	return table, records
}

func TestWideCSVWriter(t *testing.T) {
	table, records := testTable()

	var buf bytes.Buffer
	err := NewWideCSVWriter("NA").Write(&buf, table, records)
	require.NoError(t, err)

	expected := "combined_key,county,province_state,country_region,2020-03-01,2020-04-01\n" +
		"\"Connecticut, US\",,Connecticut,US,85,NA\n" +
		"\"Fairfield, Connecticut, US\",Fairfield,Connecticut,US,0,500\n"
	assert.Equal(t, expected, buf.String())
}

func TestWideCSVWriterMissingRecord(t *testing.T) {
	table, _ := testTable()

	var buf bytes.Buffer
	err := NewWideCSVWriter("").Write(&buf, table, map[string]schema.GeoRecord{})
	assert.EqualError(t, err, `no geo record for "Connecticut, US"`)
}

func TestWideCSVWriterWriteFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "wide")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	table, records := testTable()
	file := filepath.Join(dir, "monthly.csv")
	require.NoError(t, NewWideCSVWriter("").WriteFile(file, table, records))

	data, err := ioutil.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"Connecticut, US\",,Connecticut,US,85,\n")
}
