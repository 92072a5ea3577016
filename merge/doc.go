// Package merge applies structured code edits to a text document.
//
// A Session wraps one document.Adapter. Edit operations run synchronously in
// call order, each against the document as earlier operations left it.
// Operations report success as a bool; Err explains the last failure. A
// failed operation never mutates the document.
//
// Commit finalizes the session. For staged documents nothing is visible
// before Commit succeeds. For immediate documents every operation is visible
// as soon as it returns, and neither Commit failure nor Abandon undoes it;
// callers that need to roll back apply Session.Inverse to the host.
package merge
