package importers

import "strings"

// Column headers are tried in order; the first one present wins. Google
// Contacts exports come first, then the headers written by WriteCSV.
var (
	firstNameHeaders = []string{"First Name", "Given Name", "first_name"}
	lastNameHeaders  = []string{"Last Name", "Family Name", "last_name"}
	emailHeaders     = []string{"E-mail 1 - Value", "email"}
	phoneHeaders     = []string{"Phone 1 - Value", "phone"}
	notesHeaders     = []string{"Notes", "notes"}
	categoryHeaders  = []string{"Category", "category"}
	telegramHeaders  = []string{"Telegram Chat ID", "telegram_chat_id"}
)

type csvColumns struct {
	firstName, lastName, email, phone, notes, category, telegram int
}

// ParseCSV extracts contacts from a header-led CSV document. Rows without a
// first name and without an email are dropped. Missing columns are skipped.
func ParseCSV(content string) []ImportedContact {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if len(lines) == 0 {
		return nil
	}

	header := SplitCSVRow(strings.TrimPrefix(lines[0], "\ufeff"))
	cols := csvColumns{
		firstName: columnIndex(header, firstNameHeaders...),
		lastName:  columnIndex(header, lastNameHeaders...),
		email:     columnIndex(header, emailHeaders...),
		phone:     columnIndex(header, phoneHeaders...),
		notes:     columnIndex(header, notesHeaders...),
		category:  columnIndex(header, categoryHeaders...),
		telegram:  columnIndex(header, telegramHeaders...),
	}

	var contacts []ImportedContact
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := SplitCSVRow(line)
		contact := ImportedContact{
			FirstName:      field(fields, cols.firstName),
			LastName:       field(fields, cols.lastName),
			Email:          field(fields, cols.email),
			Phone:          NormalizePhone(field(fields, cols.phone)),
			Notes:          field(fields, cols.notes),
			Category:       field(fields, cols.category),
			TelegramChatID: field(fields, cols.telegram),
		}
		if contact.FirstName == "" {
			contact.FirstName = UnknownFirstName
		}

		if contact.hasName() || contact.Email != "" {
			contacts = append(contacts, contact)
		}
	}

	return contacts
}

// SplitCSVRow tokenizes one CSV line. Double quotes toggle quoted mode and are
// removed; commas split fields only outside quotes; fields are trimmed.
func SplitCSVRow(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))

	return fields
}

// columnIndex returns the index of the first candidate present in header, or -1.
func columnIndex(header []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, name := range header {
			if name == candidate {
				return i
			}
		}
	}
	return -1
}

func field(fields []string, index int) string {
	if index < 0 || index >= len(fields) {
		return ""
	}
	return fields[index]
}
