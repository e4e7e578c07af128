// Package store provides SQLite-backed persistence for jobtrack entities.
//
// A single *DB (the connection manager) is opened per process and passed
// explicitly to each entity store:
//   - Companies: employers
//   - Tags: classification labels (location or length)
//   - Jobs: job applications, referencing a company
//   - JobTags: the many-to-many link between jobs and tags
//
// # Rules
//
// Validation first: domain invariants and foreign-key lookups run before any
// mutating statement is issued.
//
// One transaction per mutation: Save, Update, Delete and Create each run
// inside DB.WithTx and roll back on any error.
//
// Cascade deletes: deleting a company removes its job applications; deleting
// a job application or a tag removes its association rows. The policy lives in
// the schema (ON DELETE CASCADE) and relies on foreign_keys=ON; stores never
// delete dependents by hand.
//
// Absence is not an error: lookups return (value, found, error) and mutations
// on a missing id return found=false.
//
// # Database Configuration
//
//   - WAL mode
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: required for the cascade policy
package store
