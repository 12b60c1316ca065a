package utils

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CleanField - NFC-normalize a free text field, trim it and collapse runs of
// whitespace into a single space
func CleanField(str string) string {
	return strings.Join(strings.Fields(norm.NFC.String(str)), " ")
}

// CleanCombinedKey - clean every segment of a comma joined key and re-join
// them with ", ". The number of segments is never changed.
func CleanCombinedKey(key string) string {
	parts := strings.Split(key, ",")
	for i, p := range parts {
		parts[i] = CleanField(p)
	}
	return strings.Join(parts, ", ")
}
