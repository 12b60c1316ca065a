package consts

import "time"

const (
	// JHU CSSE US deaths time series, one column per day
	JHUDeathsUSURL = "https://raw.githubusercontent.com/CSSEGISandData/COVID-19/master/csse_covid_19_data/csse_covid_19_time_series/time_series_covid19_deaths_US.csv"

	CombinedKeyColumn = "Combined_Key"

	// date headers are M/D/YY, e.g. 1/22/20
	ReportDateLayout = "1/2/06"

	// month columns in the wide output
	MonthLayout = "2006-01-02"

	CombinedKeyDelimiter = ","

	DefaultCountry         = "US"
	DefaultMissingMarker   = "NA"
	DefaultSourceTimeout   = 30 * time.Second
	DefaultOutputFile      = "monthly_deaths_US.csv"
	MalformedKeySampleSize = 5
)

// leading columns of the wide output, followed by one column per month
var WideHeaderColumns = []string{"combined_key", "county", "province_state", "country_region"}
