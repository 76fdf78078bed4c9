// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package id

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	// MinTokenLength is the shortest token SecureToken will produce.
	MinTokenLength = 64
	// MaxTokenLength matches the width of the invitation token column.
	MaxTokenLength = 128
)

// SecureToken returns a URL-safe random token of exactly n characters drawn from crypto/rand.
// n below MinTokenLength is raised to MinTokenLength; n above MaxTokenLength is an error.
func SecureToken(n int) (string, error) {
	if n > MaxTokenLength {
		return "", fmt.Errorf("token length %d exceeds %d", n, MaxTokenLength)
	}
	if n < MinTokenLength {
		n = MinTokenLength
	}
	// 3 raw bytes encode to 4 characters
	buf := make([]byte, (n*3+3)/4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)[:n], nil
}

// TokenGenerator returns a generator producing tokens of length n.
func TokenGenerator(n int) func() (string, error) {
	return func() (string, error) {
		return SecureToken(n)
	}
}
