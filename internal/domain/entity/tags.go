package entity

import "strings"

// TagSeparator joins tags into their stored form. Validation rejects tags containing it.
const TagSeparator = ";"

// JoinTags encodes tags for storage. An empty list is stored as the empty string.
func JoinTags(tags []string) string {
	return strings.Join(tags, TagSeparator)
}

// SplitTags decodes the stored form produced by JoinTags.
func SplitTags(stored string) []string {
	if stored == "" {
		return nil
	}
	return strings.Split(stored, TagSeparator)
}
