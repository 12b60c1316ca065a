package schema

// GeoLevel - depth of a combined key in the county / state / country hierarchy
type GeoLevel string

const (
	LevelCountry GeoLevel = "country"
	LevelState   GeoLevel = "state"
	LevelCounty  GeoLevel = "county"
)

// GeoRecord - geographic columns decomposed from a combined key.
// County and ProvinceState are empty unless Level says they are populated.
type GeoRecord struct {
	CombinedKey   string   `json:"combined_key" bson:"combined_key"`
	County        string   `json:"county,omitempty" bson:"county"`
	ProvinceState string   `json:"province_state,omitempty" bson:"province_state"`
	CountryRegion string   `json:"country_region" bson:"country_region"`
	Level         GeoLevel `json:"level" bson:"level"`
}

func (g GeoRecord) HasCounty() bool {
	return g.Level == LevelCounty
}

func (g GeoRecord) HasProvinceState() bool {
	return g.Level == LevelCounty || g.Level == LevelState
}
