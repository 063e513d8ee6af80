package importers

import "strings"

// ParseVCard extracts contacts from concatenated VCARD blocks. Recognised
// properties are FN, N, EMAIL, TEL, NOTE, CATEGORIES and X-TELEGRAM-CHAT-ID;
// anything else is ignored. A block is kept when it yields a real first name,
// an email or a phone number.
func ParseVCard(content string) []ImportedContact {
	var contacts []ImportedContact

	for _, block := range strings.Split(content, vcardMarker) {
		if strings.TrimSpace(block) == "" {
			continue
		}

		contact := parseVCardBlock(block)
		if contact.hasName() || contact.Email != "" || contact.Phone != "" {
			contacts = append(contacts, contact)
		}
	}

	return contacts
}

func parseVCardBlock(block string) ImportedContact {
	var (
		contact         ImportedContact
		fnFirst, fnLast string
		nFirst, nLast   string
	)

	for _, line := range unfoldLines(block) {
		line = strings.ReplaceAll(line, `\`, "")

		name, value, ok := splitProperty(line)
		if !ok {
			continue
		}

		switch name {
		case "FN":
			first, last, _ := strings.Cut(value, " ")
			fnFirst, fnLast = first, strings.TrimSpace(last)
		case "N":
			// family;given;additional;prefix;suffix
			parts := strings.Split(value, ";")
			nLast = strings.TrimSpace(parts[0])
			if len(parts) > 1 {
				nFirst = strings.TrimSpace(parts[1])
			}
		case "EMAIL":
			if contact.Email == "" {
				contact.Email = value
			}
		case "TEL":
			if contact.Phone == "" {
				contact.Phone = NormalizePhone(value)
			}
		case "NOTE":
			contact.Notes = value
		case "CATEGORIES":
			first, _, _ := strings.Cut(value, ",")
			contact.Category = strings.TrimSpace(first)
		case "X-TELEGRAM-CHAT-ID":
			contact.TelegramChatID = value
		}
	}

	// Structured N components take precedence over the FN split.
	contact.FirstName = firstNonEmpty(nFirst, fnFirst, UnknownFirstName)
	contact.LastName = firstNonEmpty(nLast, fnLast)

	return contact
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// splitProperty returns the upper-cased property name of a content line with
// any group prefix ("item1.") and parameters (";TYPE=HOME") removed.
func splitProperty(line string) (string, string, bool) {
	head, value, ok := strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}

	name, _, _ := strings.Cut(head, ";")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}

	return strings.ToUpper(strings.TrimSpace(name)), strings.TrimSpace(value), true
}

// unfoldLines splits a block into logical lines, joining continuation lines
// that start with a space or tab onto the previous line.
func unfoldLines(block string) []string {
	raw := strings.Split(strings.ReplaceAll(block, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))

	for _, line := range raw {
		line = strings.TrimSuffix(line, "\r")
		if (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && len(lines) > 0 {
			lines[len(lines)-1] += line[1:]
			continue
		}
		lines = append(lines, line)
	}

	return lines
}
