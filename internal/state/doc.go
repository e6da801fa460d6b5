// Package state owns the task collection and the active list filter.
//
// Store is the single writer of task records. Every effective mutation is
// serialized under the store mutex and then announced to subscribers with a
// consistent Snapshot, which is how persistence, history and metrics observe
// the store. Operations addressed at an unknown id are silent no-ops and do
// not notify.
//
// The package exposes narrow interfaces (Reader, Mutator, Notifier) so
// callers depend only on what they use.
package state
