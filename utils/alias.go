package utils

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// KeyAliases - maps an inconsistent combined key spelling to its canonical form
type KeyAliases map[string]string

// LoadKeyAliases - read a yaml mapping of `raw key: canonical key`
func LoadKeyAliases(file string) (KeyAliases, error) {
	data, err := ioutil.ReadFile(file)
	if nil != err {
		return nil, err
	}
	return ParseKeyAliases(data)
}

func ParseKeyAliases(data []byte) (KeyAliases, error) {
	raw := make(map[string]string)
	if err := yaml.Unmarshal(data, &raw); nil != err {
		return nil, fmt.Errorf("decode key aliases: %w", err)
	}

	aliases := make(KeyAliases, len(raw))
	for from, to := range raw {
		aliases[CleanCombinedKey(from)] = CleanCombinedKey(to)
	}
	return aliases, nil
}

// Resolve - canonical spelling of key, or key itself when there is no alias
func (a KeyAliases) Resolve(key string) string {
	if to, ok := a[key]; ok {
		return to
	}
	return key
}
