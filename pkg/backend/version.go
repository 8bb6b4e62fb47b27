// pkg/backend/version.go
package backend

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrVersionNotFound is returned when generated code lacks the version constant
var ErrVersionNotFound = errors.New("version constant not found")

// ExtractVersion finds the declaration of constName in generated Go source
// and returns its value. Decimal and hexadecimal literals are accepted, with
// an optional uint32/int32 type.
func ExtractVersion(src, constName string) (uint32, error) {
	re := regexp.MustCompile(`(?m)^\s*(?:const\s+)?` + regexp.QuoteMeta(constName) +
		`\s*(?:u?int32\s*)?=\s*(0[xX][0-9a-fA-F]+|[0-9]+)\b`)

	m := re.FindStringSubmatch(src)
	if m == nil {
		return 0, fmt.Errorf("failed to find %s: %w", constName, ErrVersionNotFound)
	}

	v, err := strconv.ParseUint(m[1], 0, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing %s = %s: %w", constName, m[1], err)
	}
	return uint32(v), nil
}
