package render

import (
	"fmt"
	"strings"
)

// unsafeChars are stripped from generated filenames; any of them breaks at
// least one target filesystem.
const unsafeChars = `\/:*?"<>|`

// BuildFileName derives the generated document's name from record fields:
// "{date}_{Type}{number}_{ourCompany}-{clientName}". Pure function of its
// inputs.
func BuildFileName(date, docType, number, ourCompany, clientName string) string {
	name := fmt.Sprintf("%s_%s%s_%s-%s", date, docType, number, ourCompany, clientName)
	return stripUnsafe(name)
}

func stripUnsafe(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeChars, r) {
			return -1
		}
		return r
	}, s)
}
