// Package json adapts encoding/json's streaming decoder into an
// engine.TokenSource.
package json

import (
	"bytes"
	"encoding/json"
	"io"

	eng "github.com/formtree/formtree/internal/engine"
)

type frame struct {
	array        bool
	expectingKey bool
}

type jsonSource struct {
	dec        *json.Decoder
	stack      []frame
	lastOffset int64
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON.
func NewReader(r io.Reader) eng.TokenSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &jsonSource{dec: dec, lastOffset: -1}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *jsonSource) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	s.lastOffset = s.dec.InputOffset()

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{expectingKey: true})
			return s.emit(eng.Token{Kind: eng.KindBeginObject}), nil
		case '}':
			s.pop()
			return s.emit(eng.Token{Kind: eng.KindEndObject}), nil
		case '[':
			s.stack = append(s.stack, frame{array: true})
			return s.emit(eng.Token{Kind: eng.KindBeginArray}), nil
		default: // ']'
			s.pop()
			return s.emit(eng.Token{Kind: eng.KindEndArray}), nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if !top.array && top.expectingKey {
				top.expectingKey = false
				return eng.Token{Kind: eng.KindKey, String: v, Offset: s.lastOffset}, nil
			}
		}
		return s.emit(eng.Token{Kind: eng.KindString, String: v}), nil
	case json.Number:
		return s.emit(eng.Token{Kind: eng.KindNumber, Number: string(v)}), nil
	case bool:
		return s.emit(eng.Token{Kind: eng.KindBool, Bool: v}), nil
	default: // nil (JSON null)
		return s.emit(eng.Token{Kind: eng.KindNull}), nil
	}
}

// emit stamps the offset and flips the enclosing object frame back to
// key position after a completed value.
func (s *jsonSource) emit(t eng.Token) eng.Token {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if !top.array && !top.expectingKey {
			top.expectingKey = true
		}
	}
	t.Offset = s.lastOffset
	return t
}

func (s *jsonSource) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
}

func (s *jsonSource) Location() int64 { return s.lastOffset }
