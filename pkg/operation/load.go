// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"bytes"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// sniffLen bounds how much of a file is inspected for binary content.
const sniffLen = 8 << 10

// 🔤 codec converts between a file encoding and UTF-8
type codec struct {
	name string
	enc  encoding.Encoding
}

func resolveEncoding(name string) (*codec, error) {
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errors.Errorf("%q: %w", name, ErrUnknownEncoding)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		return nil, errors.Errorf("%q: %w", name, ErrUnknownEncoding)
	}
	return &codec{name: canonical, enc: enc}, nil
}

func (c *codec) utf8() bool {
	return c.name == "utf-8"
}

// decode returns content as UTF-8. UTF-8 input is passed through untouched.
func (c *codec) decode(raw []byte) (string, error) {
	if c.utf8() {
		return string(raw), nil
	}
	out, err := c.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", errors.Errorf("decoding %s: %w", c.name, err)
	}
	return string(out), nil
}

func (c *codec) encode(content string) ([]byte, error) {
	if c.utf8() {
		return []byte(content), nil
	}
	out, err := c.enc.NewEncoder().Bytes([]byte(content))
	if err != nil {
		return nil, errors.Errorf("encoding %s: %w", c.name, err)
	}
	return out, nil
}

// binary reports whether raw looks binary once decoded.
func (c *codec) binary(raw []byte) bool {
	if c.utf8() {
		return isBinary(raw)
	}
	decoded, err := c.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return true
	}
	return isBinary(decoded)
}

// isBinary sniffs the head of content: NUL bytes mean binary, valid UTF-8
// means text, otherwise the detected MIME type must descend from text/plain.
func isBinary(content []byte) bool {
	head := content
	if len(head) > sniffLen {
		head = trimPartialRune(head[:sniffLen])
	}
	if len(head) == 0 {
		return false
	}
	if bytes.IndexByte(head, 0) != -1 {
		return true
	}
	if utf8.Valid(head) {
		return false
	}
	for m := mimetype.Detect(head); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return false
		}
	}
	return true
}

// trimPartialRune drops a multi-byte rune cut in half by the sniff limit.
func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax-1 && len(b) > 0; i++ {
		r, size := utf8.DecodeLastRune(b)
		if r != utf8.RuneError || size != 1 {
			return b
		}
		b = b[:len(b)-1]
	}
	return b
}
