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

package safe

import (
	"fmt"
	"runtime/debug"

	"github.com/go-arcade/roster/pkg/log"
)

// Go runs f in a new goroutine, logging any panic.
func Go(f func()) {
	go func() {
		if err := Do(func() error { f(); return nil }); err != nil {
			log.Errorw("goroutine panicked", "error", err)
		}
	}()
}

// Do runs f and turns a panic into an error carrying the stack.
func Do(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered from panic: %v\n%s", r, debug.Stack())
		}
	}()
	return f()
}
