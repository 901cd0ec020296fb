package lzacfg

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

var placeholderRe = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// ApplyReplacements resolves {{key}} placeholders in a raw configuration
// document against installer-provided values. Keys are trimmed of
// surrounding whitespace; an unresolved key is an error.
func ApplyReplacements(doc []byte, values map[string]string) ([]byte, error) {
	var resolveErr error
	result := placeholderRe.ReplaceAllFunc(doc, func(match []byte) []byte {
		key := strings.TrimSpace(string(placeholderRe.FindSubmatch(match)[1]))
		val, ok := values[key]
		if !ok {
			if resolveErr == nil {
				resolveErr = errors.Newf("unknown replacement key %q", key)
			}
			return match
		}
		return []byte(val)
	})
	if resolveErr != nil {
		return nil, resolveErr
	}
	return result, nil
}
