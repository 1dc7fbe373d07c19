package domain

import "strings"

// FieldKey derives the metafield key stored for a field label:
// lower-case, every space replaced by an underscore.
//
//	"Group Name" -> "group_name"
//	"Style"      -> "style"
//	"Metal"      -> "metal"
//	"Shape"      -> "shape"
func FieldKey(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), " ", "_")
}

// FieldLabel maps a stored key back to the label it was derived from.
// Only labels in the given set are considered; ok is false for any other key.
func FieldLabel(key string, labels []string) (string, bool) {
	for _, label := range labels {
		if FieldKey(label) == key {
			return label, true
		}
	}
	return "", false
}
