// Package errors provides classified error primitives used across taskboard.
//
// A ClassifiedError carries a category (validation, not_found, storage, ...), a
// severity and a retry strategy, plus structured context. Errors are built with
// the fluent ErrorBuilder and presented to CLI users through CLIErrorAdapter,
// which maps categories to process exit codes.
//
// Example usage:
//
//	err := errors.StorageError("write slot failed").
//		WithContext("slot_key", key).
//		WithCause(ioErr).
//		Build()
package errors
