// Package seed creates and drops the jobtrack schema and loads fixture data
// into it.
//
// Fixtures are written in YAML or CUE. Jobs refer to their company and tags
// by name, so a fixture never needs to know the ids the database will assign.
// Every row is written through the entity stores, so a fixture cannot bypass
// the invariants enforced there.
package seed
