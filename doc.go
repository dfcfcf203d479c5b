// Package formtree extracts nested, Rails-style bracketed parameters from web
// request payloads and folds them into a single ordered tree.
//
// It provides:
//
// - A bracket-path parser ("user[tags][]" -> key, key, append)
// - An ordered Value tree with one merge primitive and one conflict policy
// - Streaming source adapters for URL-encoded, multipart, and JSON bodies
// - A compose step that folds the query-string tree and the body tree under a
//   defined precedence (body wins on scalar collision)
// - A stable error model via Issues (JSON Pointer, code, message)
//
// Design policy:
// - Keep only public APIs in the root package; put token plumbing under internal/.
// - Place pluggable JSON token sources under source/ and the CLI under cmd/formtree.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	tree, err := formtree.FromRequest(req, formtree.Options{MaxFileBytes: 8 << 20})
//	if err != nil { ... }
//	defer tree.Close()
//
//	var form SignupForm
//	err = formtree.Decode(tree, &form)
//
// Every upload written during extraction is owned by the returned tree and is
// deleted by Close, on success and failure paths alike.
package formtree
