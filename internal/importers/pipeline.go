package importers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sunrise-events/sunrise/internal/database/locks"
	"github.com/sunrise-events/sunrise/internal/entities"
	"github.com/sunrise-events/sunrise/internal/metrics"
)

// sampleSize is how many parsed records are echoed back when none is valid.
const sampleSize = 5

// ContactStore is the persistence the pipeline needs.
type ContactStore interface {
	ContactInserter
	// ExistingEmails returns the lowercase emails among emails that userID
	// already has stored.
	ExistingEmails(ctx context.Context, userID uint, emails []string) (map[string]struct{}, error)
}

// Locker serialises imports per user.
type Locker interface {
	Acquire(ctx context.Context, userID uint, ttl time.Duration) (string, error)
	Release(ctx context.Context, userID uint, token string) error
}

type PipelineConfig struct {
	ChunkSize int
	Workers   int
	LockTTL   time.Duration
}

// ImportRequest describes one uploaded file.
type ImportRequest struct {
	UserID          uint
	Filename        string
	Content         string
	DefaultCategory string
	Strict          bool
}

// Result carries the counts of one import. Inserted never exceeds
// Valid - Duplicates.
type Result struct {
	Format       Format            `json:"format"`
	Total        int               `json:"total"`
	Valid        int               `json:"valid"`
	Duplicates   int               `json:"duplicates"`
	Inserted     int               `json:"imported"`
	FailedChunks []int             `json:"failedChunks,omitempty"`
	Sample       []ImportedContact `json:"-"`
}

// Skipped is the number of parsed records that were not inserted.
func (r Result) Skipped() int {
	return r.Total - r.Inserted
}

// Pipeline runs the import workflow:
// detect → parse → email gate → dedupe → existing filter → quota → write.
type Pipeline struct {
	store  ContactStore
	limits LimitChecker
	locker Locker
	cfg    PipelineConfig
}

// NewPipeline creates an import pipeline. locker may be nil when imports for
// the same user can never run concurrently (for example the CLI).
func NewPipeline(store ContactStore, limits LimitChecker, locker Locker, cfg PipelineConfig) *Pipeline {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 5 * time.Minute
	}
	return &Pipeline{store: store, limits: limits, locker: locker, cfg: cfg}
}

// Import processes one file for one user. On ErrNoValidContacts the returned
// Result still holds the parse counts and a sample for diagnostics.
func (p *Pipeline) Import(ctx context.Context, req ImportRequest) (result Result, err error) {
	start := time.Now()
	defer func() {
		p.observe(result, err, time.Since(start))
	}()

	format, err := DetectFormat(req.Filename, req.Content)
	if err != nil {
		return result, err
	}
	result.Format = format

	parsed, err := Parse(format, req.Content)
	if err != nil {
		return result, err
	}
	result.Total = len(parsed)
	result.Sample = parsed[:min(len(parsed), sampleSize)]

	valid := withEmail(parsed)
	result.Valid = len(valid)
	if len(valid) == 0 {
		return result, ErrNoValidContacts
	}

	if p.locker != nil {
		token, err := p.locker.Acquire(ctx, req.UserID, p.cfg.LockTTL)
		if errors.Is(err, locks.ErrLocked) {
			return result, ErrImportInProgress
		}
		if err != nil {
			return result, fmt.Errorf("failed to acquire import lock: %w", err)
		}
		defer func() {
			if err := p.locker.Release(context.WithoutCancel(ctx), req.UserID, token); err != nil {
				log.Warn().Err(err).Uint("user_id", req.UserID).Msg("failed to release import lock")
			}
		}()
	}

	unique, batchDuplicates := DedupeBatch(valid)

	existing, err := p.store.ExistingEmails(ctx, req.UserID, emailKeys(unique))
	if err != nil {
		return result, fmt.Errorf("failed to load existing contacts: %w", err)
	}
	fresh, storedDuplicates := withoutExisting(unique, existing)
	result.Duplicates = batchDuplicates + storedDuplicates

	if len(fresh) == 0 {
		return result, nil
	}

	status, err := p.limits.ContactLimits(ctx, req.UserID)
	if err != nil {
		return result, fmt.Errorf("failed to check contact limits: %w", err)
	}
	if err := CheckQuota(status, len(fresh)); err != nil {
		return result, err
	}

	contacts := make([]entities.Contact, len(fresh))
	for i, c := range fresh {
		contacts[i] = c.ToEntity(req.UserID, req.DefaultCategory)
	}

	writer := Writer{
		Store:     p.store,
		ChunkSize: p.cfg.ChunkSize,
		Workers:   p.cfg.Workers,
		Strict:    req.Strict,
	}
	written, err := writer.Write(ctx, req.UserID, contacts)
	if err != nil {
		return result, err
	}
	result.Inserted = written.Inserted
	result.FailedChunks = written.FailedChunks

	log.Info().
		Uint("user_id", req.UserID).
		Str("format", string(format)).
		Int("total", result.Total).
		Int("duplicates", result.Duplicates).
		Int("inserted", result.Inserted).
		Ints("failed_chunks", result.FailedChunks).
		Msg("contacts imported")

	return result, nil
}

func (p *Pipeline) observe(result Result, err error, elapsed time.Duration) {
	metrics.ImportDuration.Observe(elapsed.Seconds())
	metrics.ImportRequestsTotal.WithLabelValues(outcome(err)).Inc()

	metrics.ImportContactsTotal.WithLabelValues("inserted").Add(float64(result.Inserted))
	metrics.ImportContactsTotal.WithLabelValues("duplicate").Add(float64(result.Duplicates))
	metrics.ImportContactsTotal.WithLabelValues("invalid").Add(float64(result.Total - result.Valid))
	metrics.ImportFailedChunksTotal.Add(float64(len(result.FailedChunks)))
}

func outcome(err error) string {
	var limitErr *LimitError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &limitErr):
		return metrics.OutcomeQuota
	case errors.Is(err, ErrNoValidContacts):
		return metrics.OutcomeNoContacts
	case errors.Is(err, ErrUnsupportedFormat):
		return metrics.OutcomeBadFormat
	case errors.Is(err, ErrImportInProgress):
		return metrics.OutcomeInProgress
	default:
		return metrics.OutcomeError
	}
}

// withEmail keeps the records that can be persisted.
func withEmail(contacts []ImportedContact) []ImportedContact {
	valid := make([]ImportedContact, 0, len(contacts))
	for _, c := range contacts {
		if c.EmailKey() != "" {
			valid = append(valid, c)
		}
	}
	return valid
}

func emailKeys(contacts []ImportedContact) []string {
	keys := make([]string, 0, len(contacts))
	for _, c := range contacts {
		keys = append(keys, c.EmailKey())
	}
	return keys
}
