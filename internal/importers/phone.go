package importers

import "strings"

// googleMultiValueSeparator joins multiple values in one Google Contacts cell.
const googleMultiValueSeparator = " ::: "

// NormalizePhone reduces a possibly multi-valued phone field to its first
// number with internal whitespace collapsed. Empty input yields "".
func NormalizePhone(raw string) string {
	for _, part := range strings.Split(raw, googleMultiValueSeparator) {
		for _, candidate := range strings.Split(part, ";") {
			if phone := strings.Join(strings.Fields(candidate), " "); phone != "" {
				return phone
			}
		}
	}
	return ""
}
