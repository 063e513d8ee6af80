package importers

// DedupeBatch drops later contacts whose email matches an earlier one,
// ignoring case. Contacts without an email are kept as they are.
func DedupeBatch(contacts []ImportedContact) ([]ImportedContact, int) {
	seen := make(map[string]struct{}, len(contacts))
	kept := make([]ImportedContact, 0, len(contacts))

	for _, c := range contacts {
		key := c.EmailKey()
		if key == "" {
			kept = append(kept, c)
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, c)
	}

	return kept, len(contacts) - len(kept)
}

// withoutExisting removes contacts whose email is in existing (lowercase keys).
func withoutExisting(contacts []ImportedContact, existing map[string]struct{}) ([]ImportedContact, int) {
	if len(existing) == 0 {
		return contacts, 0
	}

	fresh := make([]ImportedContact, 0, len(contacts))
	for _, c := range contacts {
		if _, found := existing[c.EmailKey()]; found {
			continue
		}
		fresh = append(fresh, c)
	}

	return fresh, len(contacts) - len(fresh)
}
