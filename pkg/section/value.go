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

package section

import "gopkg.in/yaml.v3"

// Kind tags the structural shape of a Value.
type Kind int

const (
	KindScalar Kind = iota // single value on one logical line
	KindBlock              // multi-line or structured content
)

func (k Kind) String() string {
	if k == KindBlock {
		return "block"
	}
	return "scalar"
}

// 📦 Value is the content found at a Path. Text is the payload that gets synced
// and hashed; the other fields describe it.
type Value struct {
	Text string
	Kind Kind
	// Tag is the YAML tag of a scalar (for example "!!float"), when known.
	Tag string
	// Tree holds the structured form of the value when the source format has one.
	Tree *yaml.Node
	// Name is the last key of the path the value was read from.
	Name string
}

// Scalar returns a scalar text value.
func Scalar(text string) Value {
	return Value{Text: text, Kind: KindScalar}
}

// Block returns a block text value.
func Block(text string) Value {
	return Value{Text: text, Kind: KindBlock}
}
