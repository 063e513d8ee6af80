// Package importers turns uploaded contact files into stored contacts.
//
// # Architecture
//
// One import request flows through a fixed sequence of stages:
//
//	file → DetectFormat → ParseVCard | ParseCSV → email gate → DedupeBatch
//	     → ContactStore.ExistingEmails → CheckQuota → Writer → contacts table
//
// Parsing and validation never touch the database. The quota decision is made
// once, before the first write, and the batch cannot grow afterwards, so the
// Writer may insert chunks in parallel without overshooting the plan ceiling.
// A per-user lock taken by the Pipeline keeps two imports for the same user
// from reading the same contact count.
//
// # Partial failures
//
// By default a chunk that fails to insert is logged and skipped: the import
// still completes, Result.Inserted drops by the chunk size and the chunk index
// is listed in Result.FailedChunks. Setting ImportRequest.Strict writes every
// chunk in one transaction and returns ErrInsertFailed instead.
//
// # Example Usage
//
//	pipeline := importers.NewPipeline(contactsRepo, subscriptionService, locksRepo, importers.PipelineConfig{
//		ChunkSize: 100,
//		Workers:   4,
//		LockTTL:   5 * time.Minute,
//	})
//
//	result, err := pipeline.Import(ctx, importers.ImportRequest{
//		UserID:   userID,
//		Filename: "contacts.vcf",
//		Content:  data,
//	})
package importers
