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

// Package hasher derives the short content identifiers embedded in generated
// section markers.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
)

// IDLength is the number of hexadecimal characters in an identifier.
const IDLength = 8

// LabelPrefix is the fixed text preceding the identifier in every marker label.
// Changing it changes generated output for every synced file.
const LabelPrefix = "This is auto-generated section with ID: "

// 🔑 Identifier returns the first IDLength hex characters of the SHA-256 digest of content.
func Identifier(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])[:IDLength]
}

// 🏷️ Label renders the marker label for an identifier.
func Label(id string) string {
	return LabelPrefix + id
}
