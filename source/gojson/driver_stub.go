//go:build !gojson

// Package gojson provides a formtree.JSONDriver backed by goccy/go-json.
package gojson

import (
	"io"

	formtree "github.com/formtree/formtree"
	jsonsrc "github.com/formtree/formtree/source/json"
)

// Driver returns a stub driver when the gojson tag is not enabled. It
// delegates to the encoding/json-based source directly to avoid recursion.
func Driver() formtree.JSONDriver { return stub{} }

type stub struct{}

func (stub) NewReader(r io.Reader) formtree.Source {
	return formtree.SourceFromEngine(jsonsrc.NewReader(r))
}
func (stub) NewBytes(b []byte) formtree.Source {
	return formtree.SourceFromEngine(jsonsrc.NewBytes(b))
}
func (stub) Name() string { return "encoding/json (gojson stub)" }
