package importers

import "strings"

type Format string

const (
	FormatVCard Format = "vcard"
	FormatCSV   Format = "csv"
)

const vcardMarker = "BEGIN:VCARD"

// DetectFormat picks the parser for an uploaded file. The extension is checked
// first, then the content is sniffed.
func DetectFormat(filename, content string) (Format, error) {
	name := strings.ToLower(filename)

	if strings.HasSuffix(name, ".vcf") || strings.Contains(content, vcardMarker) {
		return FormatVCard, nil
	}
	if strings.HasSuffix(name, ".csv") || strings.Contains(content, ",") {
		return FormatCSV, nil
	}
	return "", ErrUnsupportedFormat
}

// Parse runs the extractor matching format.
func Parse(format Format, content string) ([]ImportedContact, error) {
	switch format {
	case FormatVCard:
		return ParseVCard(content), nil
	case FormatCSV:
		return ParseCSV(content), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}
