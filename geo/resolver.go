package geo

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bitmark-inc/covid-monthly/consts"
	"github.com/bitmark-inc/covid-monthly/schema"
)

var (
	ErrMalformedKey = errors.New("malformed combined key")
)

// KeyDecomposer - interface for splitting a combined key into geographic levels
type KeyDecomposer interface {
	Decompose(key string) (schema.GeoRecord, error)
}

// MalformedKeyError - a combined key with more delimiters than hierarchy levels
type MalformedKeyError struct {
	Key    string
	Commas int
}

func (e *MalformedKeyError) Error() string {
	return fmt.Sprintf("%s: %q has %d delimiters", ErrMalformedKey, e.Key, e.Commas)
}

func (e *MalformedKeyError) Unwrap() error {
	return ErrMalformedKey
}

// MalformedKeyErrors - every key rejected during one batch
type MalformedKeyErrors struct {
	errors []*MalformedKeyError
}

func (e *MalformedKeyErrors) Error() string {
	errorStrings := make([]string, len(e.errors))
	for i, err := range e.errors {
		errorStrings[i] = fmt.Sprintf("#%d: %s", i, err.Error())
	}
	return strings.Join(errorStrings, "\n")
}

func (e *MalformedKeyErrors) Unwrap() error {
	return ErrMalformedKey
}

func (e *MalformedKeyErrors) Len() int {
	return len(e.errors)
}

func (e *MalformedKeyErrors) Keys() []string {
	keys := make([]string, len(e.errors))
	for i, err := range e.errors {
		keys[i] = err.Key
	}
	return keys
}

// Sample - first n rejected keys
func (e *MalformedKeyErrors) Sample(n int) []string {
	keys := e.Keys()
	if n < len(keys) {
		return keys[:n]
	}
	return keys
}

func NewMalformedKeyErrors(errors []*MalformedKeyError) *MalformedKeyErrors {
	return &MalformedKeyErrors{
		errors: errors,
	}
}

// KeyResolver - decomposes `<County>, <State>, <Country>` keys. The country
// of state and county level keys is not parsed from the key, it is the
// configured country.
type KeyResolver struct {
	country string
}

func NewKeyResolver(country string) *KeyResolver {
	if country == "" {
		country = consts.DefaultCountry
	}
	return &KeyResolver{
		country: country,
	}
}

func (r *KeyResolver) Country() string {
	return r.country
}

// Decompose - split a combined key by its delimiter count. A key with more
// than two delimiters is rejected with *MalformedKeyError.
//
// County names are never re-split: the county level split is capped at three
// segments, so a county name containing a comma would be mis-parsed.
func (r *KeyResolver) Decompose(key string) (schema.GeoRecord, error) {
	commas := strings.Count(key, consts.CombinedKeyDelimiter)

	switch commas {
	case 0:
		return schema.GeoRecord{
			CombinedKey:   key,
			CountryRegion: key,
			Level:         schema.LevelCountry,
		}, nil
	case 1:
		parts := strings.SplitN(key, consts.CombinedKeyDelimiter, 2)
		return schema.GeoRecord{
			CombinedKey:   key,
			ProvinceState: strings.TrimSpace(parts[0]),
			CountryRegion: r.country,
			Level:         schema.LevelState,
		}, nil
	case 2:
		parts := strings.SplitN(key, consts.CombinedKeyDelimiter, 3)
		return schema.GeoRecord{
			CombinedKey:   key,
			County:        strings.TrimSpace(parts[0]),
			ProvinceState: strings.TrimSpace(parts[1]),
			CountryRegion: r.country,
			Level:         schema.LevelCounty,
		}, nil
	default:
		return schema.GeoRecord{}, &MalformedKeyError{Key: key, Commas: commas}
	}
}

// DecomposeAll - decompose every distinct key once. Rejected keys are
// collected instead of aborting the batch; the returned error is nil when
// every key was accepted.
func (r *KeyResolver) DecomposeAll(keys []string) (map[string]schema.GeoRecord, *MalformedKeyErrors) {
	records := make(map[string]schema.GeoRecord, len(keys))
	rejected := make(map[string]struct{})
	var errs []*MalformedKeyError

	for _, key := range keys {
		if _, ok := records[key]; ok {
			continue
		}
		if _, ok := rejected[key]; ok {
			continue
		}

		record, err := r.Decompose(key)
		if nil != err {
			var malformed *MalformedKeyError
			if errors.As(err, &malformed) {
				rejected[key] = struct{}{}
				errs = append(errs, malformed)
			}
			continue
		}
		records[key] = record
	}

	if len(errs) == 0 {
		return records, nil
	}

	sort.Slice(errs, func(i, j int) bool {
		return errs[i].Key < errs[j].Key
	})
	return records, NewMalformedKeyErrors(errs)
}
