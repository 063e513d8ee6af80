// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── contacts/        # Contact CRUD, duplicate lookup and batch inserts
//	├── subscriptions/   # Plan tier per user
//	├── users/           # User management
//	├── audit/           # Audit trail
//	├── ratelimits/      # Persistent rate-limit attempt records
//	└── locks/           # Per-user import locks
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./sunrise.db")
//
//	contactsRepo := contacts.NewRepository(db.DB)
//	existing, err := contactsRepo.ExistingEmails(ctx, userID, emails)
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Register the entity in NewDatabase's AutoMigrate call
//  5. Add compile-time interface checks next to the consumer's interface
package database
