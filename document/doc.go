// Package document adapts the two backing stores a merge session can edit
// to a single contract.
//
// A *LiveDocument wraps a host editor document; each mutation is visible to
// other readers of that document as soon as it is applied, and nothing is
// guaranteed to be atomic. A *FileDocument stages mutations in memory and
// only changes the file on disk when Commit succeeds.
//
// Callers that need all-or-nothing visibility check Kind before editing.
package document
