package importers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/sunrise-events/sunrise/internal/entities"
)

// CSVHeader is the header row written by WriteCSV. ParseCSV accepts it.
var CSVHeader = []string{"first_name", "last_name", "email", "phone", "category", "notes", "telegram_chat_id"}

// WriteCSV writes contacts as CSV. Line breaks inside values are flattened
// to spaces so the output stays one record per line. ParseCSV strips every
// double quote, so quotes inside values do not survive a re-import.
func WriteCSV(w io.Writer, contacts []entities.Contact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	for _, c := range contacts {
		record := []string{
			flatten(c.FirstName),
			flatten(c.LastName),
			flatten(c.Email),
			flatten(c.Phone),
			flatten(c.Category),
			flatten(c.Notes),
			flatten(c.TelegramChatID),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteVCard writes contacts as vCard 3.0 blocks. ParseVCard strips every
// backslash, so backslashes inside values do not survive a re-import.
func WriteVCard(w io.Writer, contacts []entities.Contact) error {
	for _, c := range contacts {
		var b strings.Builder
		b.WriteString("BEGIN:VCARD\r\nVERSION:3.0\r\n")
		fmt.Fprintf(&b, "N:%s;%s;;;\r\n", nameComponent(c.LastName), nameComponent(c.FirstName))
		fmt.Fprintf(&b, "FN:%s\r\n", flatten(c.FullName()))
		if c.Email != "" {
			fmt.Fprintf(&b, "EMAIL;TYPE=INTERNET:%s\r\n", flatten(c.Email))
		}
		if c.Phone != "" {
			fmt.Fprintf(&b, "TEL;TYPE=CELL:%s\r\n", flatten(c.Phone))
		}
		if c.Notes != "" {
			fmt.Fprintf(&b, "NOTE:%s\r\n", flatten(c.Notes))
		}
		if c.Category != "" {
			fmt.Fprintf(&b, "CATEGORIES:%s\r\n", flatten(c.Category))
		}
		if c.TelegramChatID != "" {
			fmt.Fprintf(&b, "X-TELEGRAM-CHAT-ID:%s\r\n", flatten(c.TelegramChatID))
		}
		b.WriteString("END:VCARD\r\n")

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// nameComponent keeps a structured name part from splitting into two.
func nameComponent(s string) string {
	return strings.ReplaceAll(flatten(s), ";", ",")
}
