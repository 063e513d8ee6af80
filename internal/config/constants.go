package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./sunrise.db"
)

// UnlimitedContacts is the plan ceiling that disables the contact quota.
const UnlimitedContacts = -1

// DefaultImportChunkSize is how many contacts are inserted per database call.
const DefaultImportChunkSize = 100
