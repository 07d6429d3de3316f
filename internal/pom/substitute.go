package pom

import (
	"strings"

	"github.com/shinji-kodama/mergepom/internal/model"
)

// wrap renders the element around a version exactly as it appears in a
// descriptor, without whitespace or attributes.
func wrap(element string, v model.Version) string {
	return "<" + element + ">" + string(v) + "</" + element + ">"
}

// ReplaceVersion replaces every literal <element>oldV</element> in text
// with <element>newV</element>. Occurrences of the bare version string
// elsewhere in the text are left untouched, and the text is returned
// unchanged when the wrapped old version does not occur.
func ReplaceVersion(oldV, newV model.Version, text, element string) string {
	return strings.ReplaceAll(text, wrap(element, oldV), wrap(element, newV))
}
