package export

import (
	"errors"

	"github.com/inful/mdfp"
)

// keyGenerated holds the export time. It is excluded from the fingerprint so
// exporting an unchanged list twice yields the same fingerprint.
const keyGenerated = "generated"

// Fingerprint computes the content fingerprint of an exported document.
// The fingerprint and generated fields are not hashed.
func Fingerprint(fields map[string]any, body []byte) (string, error) {
	if fields == nil {
		return "", errors.New("fields map is nil")
	}

	fieldsForHash := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == mdfp.FingerprintField || k == keyGenerated {
			continue
		}
		fieldsForHash[k] = v
	}

	frontmatterForHash := ""
	if len(fieldsForHash) > 0 {
		serialized, err := serializeYAML(fieldsForHash)
		if err != nil {
			return "", err
		}
		frontmatterForHash = trimSingleTrailingNewline(string(serialized))
	}

	return mdfp.CalculateFingerprintFromParts(frontmatterForHash, string(body)), nil
}

// Verify reports whether the fingerprint stored in an exported Markdown
// document still matches its content.
func Verify(content []byte) (bool, error) {
	fields, body, err := split(content)
	if err != nil {
		return false, err
	}
	stored, ok := fields[mdfp.FingerprintField].(string)
	if !ok || stored == "" {
		return false, nil
	}
	computed, err := Fingerprint(fields, body)
	if err != nil {
		return false, err
	}
	return computed == stored, nil
}
