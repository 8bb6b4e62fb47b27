// pkg/metadata/cgo.go
package metadata

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// CgoLinkFileName is the name of the generated cgo directive file
const CgoLinkFileName = "zcgo_link.go"

// CgoLinkFile renders a Go file whose #cgo directives point the package at
// the runtime's headers and shared library.
func CgoLinkFile(pkg string, cflags, ldflags []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("// Code generated by rsys; DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	buf.WriteString("/*\n")
	if len(cflags) > 0 {
		fmt.Fprintf(&buf, "#cgo CFLAGS: %s\n", joinFlags(cflags))
	}
	if len(ldflags) > 0 {
		fmt.Fprintf(&buf, "#cgo LDFLAGS: %s\n", joinFlags(ldflags))
	}
	buf.WriteString("*/\nimport \"C\"\n")
	return buf.Bytes()
}

func joinFlags(flags []string) string {
	quoted := make([]string, len(flags))
	for i, f := range flags {
		if strings.ContainsAny(f, " \t'\"") {
			f = strconv.Quote(f)
		}
		quoted[i] = f
	}
	return strings.Join(quoted, " ")
}
