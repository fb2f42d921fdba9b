package mapper

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeReadme decodes the base64 content field of a README metadata
// payload into UTF-8 text. GitHub wraps the encoded form with embedded
// newlines, which must be stripped before decoding.
func DecodeReadme(encoded string) (string, error) {
	compact := strings.ReplaceAll(encoded, "\n", "")
	raw, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return "", fmt.Errorf("failed to decode readme content: %w", err)
	}
	return string(raw), nil
}
