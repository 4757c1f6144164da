// Package errors provides the classified error type used across backupstate.
//
// Errors carry a category (config, filesystem, database, snapshot, ...), a severity
// and a retry hint, plus structured context for logging. The CLI and HTTP adapters
// map categories onto exit codes and status codes.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryFileSystem, "write snapshot").
//		WithContext("path", path).
//		Build()
package errors
