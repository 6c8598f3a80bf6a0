// Package sqlite stores daily states and records in one SQLite file,
// opened with the pure Go modernc.org/sqlite driver so the binary needs
// no CGO. One connection pool serves both stores:
//
//   - StateStore: daily state with optimistic versioning and raw payload history
//   - RecordStore: free-form records per date
//
// # Schema
//
// Numbered .up.sql files in migrations/ are applied in order at open time
// and recorded in schema_migrations. The .down.sql files are for manual
// rollback.
//
// # Concurrency
//
// Save updates a state row only when its version matches the version that was
// loaded, so two processes that bypass the shared lock cannot silently drop an
// update: the loser gets domain.ErrConflict.
//
// # Data Location
//
// By default, the database is stored at ~/.daylog/data/daylog.db
package sqlite
