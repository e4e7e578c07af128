// Package domain defines the entities tracked by jobtrack and the rules that
// make a value of each entity valid.
//
// This package holds types and validation only. It never touches storage;
// internal/store depends on domain, domain imports nothing internal.
//
// Key conventions:
//   - Constructors (NewCompany, NewTag, NewJobApplication) return a value only
//     when every invariant holds, otherwise a *ValidationError
//   - Text is trimmed and NFC-normalized before it is validated or stored
//   - Optional text is "" when absent; optional dates are nil pointers
//   - All JSON tags use snake_case and match the column names
package domain
