package importers

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/sunrise-events/sunrise/internal/config"
	"github.com/sunrise-events/sunrise/internal/entities"
)

// ContactInserter persists contacts.
type ContactInserter interface {
	InsertBatch(ctx context.Context, contacts []entities.Contact) error
	InsertAll(ctx context.Context, chunks [][]entities.Contact) error
}

// Writer inserts contacts in fixed-size chunks.
type Writer struct {
	Store     ContactInserter
	ChunkSize int
	// Workers bounds how many chunks are inserted concurrently. Values below
	// 2 insert chunks one after another.
	Workers int
	// Strict writes all chunks in a single transaction.
	Strict bool
}

type WriteResult struct {
	Inserted     int
	FailedChunks []int
}

// Write inserts contacts for userID. In the default mode a failing chunk is
// logged and skipped, and the returned error is always nil. In strict mode
// nothing is inserted unless every chunk succeeds.
func (w *Writer) Write(ctx context.Context, userID uint, contacts []entities.Contact) (WriteResult, error) {
	for i := range contacts {
		contacts[i].UserID = userID
	}

	chunks := chunkContacts(contacts, w.chunkSize())
	if len(chunks) == 0 {
		return WriteResult{}, nil
	}

	if w.Strict {
		if err := w.Store.InsertAll(ctx, chunks); err != nil {
			log.Error().Err(err).Uint("user_id", userID).Int("contacts", len(contacts)).Msg("strict contact import rolled back")
			return WriteResult{}, fmt.Errorf("%w: %w", ErrInsertFailed, err)
		}
		return WriteResult{Inserted: len(contacts)}, nil
	}

	failed := make([]bool, len(chunks))

	var g errgroup.Group
	g.SetLimit(max(w.Workers, 1))

	for i, chunk := range chunks {
		g.Go(func() error {
			if err := w.Store.InsertBatch(ctx, chunk); err != nil {
				log.Error().Err(err).
					Uint("user_id", userID).
					Int("chunk", i).
					Int("size", len(chunk)).
					Msg("contact chunk insert failed, skipping")
				failed[i] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	var result WriteResult
	for i, chunk := range chunks {
		if failed[i] {
			result.FailedChunks = append(result.FailedChunks, i)
			continue
		}
		result.Inserted += len(chunk)
	}

	return result, nil
}

func (w *Writer) chunkSize() int {
	if w.ChunkSize <= 0 {
		return config.DefaultImportChunkSize
	}
	return w.ChunkSize
}

func chunkContacts(contacts []entities.Contact, size int) [][]entities.Contact {
	chunks := make([][]entities.Contact, 0, (len(contacts)+size-1)/size)
	for start := 0; start < len(contacts); start += size {
		end := min(start+size, len(contacts))
		chunks = append(chunks, contacts[start:end])
	}
	return chunks
}
