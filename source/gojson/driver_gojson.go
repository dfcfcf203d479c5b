//go:build gojson

// Package gojson provides a formtree.JSONDriver backed by goccy/go-json.
package gojson

import (
	"bytes"
	"io"

	j "github.com/goccy/go-json"

	formtree "github.com/formtree/formtree"
	eng "github.com/formtree/formtree/internal/engine"
)

// Driver returns a formtree.JSONDriver backed by goccy/go-json.
func Driver() formtree.JSONDriver { return driverGoJSON{} }

type driverGoJSON struct{}

func (driverGoJSON) NewReader(r io.Reader) formtree.Source {
	return formtree.SourceFromEngine(NewReader(r))
}
func (driverGoJSON) NewBytes(b []byte) formtree.Source {
	return formtree.SourceFromEngine(NewBytes(b))
}
func (driverGoJSON) Name() string { return "go-json" }

// ---- engine.TokenSource implementation using go-json Decoder ----

type frame struct {
	array        bool
	expectingKey bool
}

type source struct {
	dec   *j.Decoder
	stack []frame
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON using go-json.
func NewReader(r io.Reader) eng.TokenSource {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &source{dec: dec}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON using go-json.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{expectingKey: true})
			return eng.Token{Kind: eng.KindBeginObject, Offset: -1}, nil
		case '}':
			s.pop()
			return s.emit(eng.Token{Kind: eng.KindEndObject}), nil
		case '[':
			s.stack = append(s.stack, frame{array: true})
			return eng.Token{Kind: eng.KindBeginArray, Offset: -1}, nil
		default: // ']'
			s.pop()
			return s.emit(eng.Token{Kind: eng.KindEndArray}), nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if !top.array && top.expectingKey {
				top.expectingKey = false
				return eng.Token{Kind: eng.KindKey, String: v, Offset: -1}, nil
			}
		}
		return s.emit(eng.Token{Kind: eng.KindString, String: v}), nil
	case j.Number:
		return s.emit(eng.Token{Kind: eng.KindNumber, Number: string(v)}), nil
	case bool:
		return s.emit(eng.Token{Kind: eng.KindBool, Bool: v}), nil
	default: // nil (JSON null)
		return s.emit(eng.Token{Kind: eng.KindNull}), nil
	}
}

func (s *source) emit(t eng.Token) eng.Token {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if !top.array && !top.expectingKey {
			top.expectingKey = true
		}
	}
	t.Offset = -1
	return t
}

func (s *source) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
}

// go-json does not expose an input offset.
func (s *source) Location() int64 { return -1 }
