// Command generate_sample writes sample address books for exercising imports.
// Usage: go run ./cmd/generate_sample [-out ./samples] [-count 500] [-seed 1]
//
// It writes contacts.csv and contacts.vcf with the same contacts. Roughly one
// in ten has no email and one in twenty repeats an earlier email in a
// different case, so imports report skipped rows and duplicates.
package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sunrise-events/sunrise/internal/entities"
	"github.com/sunrise-events/sunrise/internal/importers"
	"github.com/sunrise-events/sunrise/internal/logging"
)

const defaultSampleDir = "./samples"

var (
	firstNames = []string{"Ada", "Grace", "Alan", "Katherine", "Linus", "Margaret", "Dennis", "Barbara", "Ken", "Radia", "Edsger", "Frances"}
	lastNames  = []string{"Lovelace", "Hopper", "Turing", "Johnson", "Torvalds", "Hamilton", "Ritchie", "Liskov", "Thompson", "Perlman", "Dijkstra", "Allen"}
	categories = []string{"friends", "family", "work", "vip", ""}
	domains    = []string{"example.com", "example.org", "mail.test"}
)

func main() {
	outDir := flag.String("out", defaultSampleDir, "directory to write the sample files to")
	count := flag.Int("count", 500, "number of contacts to generate")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	logging.Init(logging.Config{Level: "info", Format: "console"})

	if *count <= 0 {
		log.Fatal().Int("count", *count).Msg("count must be positive")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", *outDir).Msg("failed to create output directory")
	}

	contacts := generateContacts(rand.New(rand.NewPCG(*seed, *seed)), *count)

	for _, out := range []struct {
		name  string
		write func(io.Writer, []entities.Contact) error
	}{
		{"contacts.csv", importers.WriteCSV},
		{"contacts.vcf", importers.WriteVCard},
	} {
		path := filepath.Join(*outDir, out.name)
		if err := writeFile(path, contacts, out.write); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("failed to write sample")
		}
		log.Info().Str("path", path).Int("contacts", len(contacts)).Msg("sample written")
	}
}

func generateContacts(rng *rand.Rand, count int) []entities.Contact {
	contacts := make([]entities.Contact, 0, count)
	var emails []string

	for i := range count {
		first := firstNames[rng.IntN(len(firstNames))]
		last := lastNames[rng.IntN(len(lastNames))]

		c := entities.Contact{
			FirstName: first,
			LastName:  last,
			Category:  categories[rng.IntN(len(categories))],
		}

		switch roll := rng.IntN(20); {
		case roll < 2:
			// left without an email
		case roll == 2 && len(emails) > 0:
			c.Email = strings.ToUpper(emails[rng.IntN(len(emails))])
		default:
			c.Email = fmt.Sprintf("%s.%s.%d@%s", strings.ToLower(first), strings.ToLower(last), i, domains[rng.IntN(len(domains))])
			emails = append(emails, c.Email)
		}

		if rng.IntN(2) == 0 {
			c.Phone = fmt.Sprintf("+1 555 %07d", rng.IntN(10_000_000))
		}
		if rng.IntN(5) == 0 {
			c.Notes = "met at the " + []string{"spring", "summer", "autumn"}[rng.IntN(3)] + " meetup"
		}
		contacts = append(contacts, c)
	}
	return contacts
}

func writeFile(path string, contacts []entities.Contact, write func(io.Writer, []entities.Contact) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, contacts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
