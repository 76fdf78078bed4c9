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

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_RetryUntilSuccess(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary")
		}
		return nil
	}, WithMaxAttempts(3), WithBackoff(Fixed(0)))

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_ReturnsLastError(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return errors.New("still failing")
	}, WithMaxAttempts(2), WithBackoff(Fixed(time.Millisecond)))

	assert.EqualError(t, err, "still failing")
	assert.Equal(t, 2, attempts)
}

func TestDo_PermanentStops(t *testing.T) {
	bad := errors.New("bad request")
	attempts := 0
	err := Do(context.Background(), func(context.Context) error {
		attempts++
		return Permanent(bad)
	}, WithMaxAttempts(5), WithBackoff(Fixed(0)))

	assert.Same(t, bad, err)
	assert.Equal(t, 1, attempts)
	assert.True(t, IsPermanent(Permanent(bad)))
	assert.False(t, IsPermanent(bad))
	assert.Nil(t, Permanent(nil))
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Do(ctx, func(context.Context) error {
		attempts++
		cancel()
		return errors.New("temporary")
	}, WithMaxAttempts(3), WithBackoff(Fixed(time.Hour)))

	assert.EqualError(t, err, "temporary")
	assert.Equal(t, 1, attempts)
}

func TestExponential(t *testing.T) {
	b := Exponential(100*time.Millisecond, time.Second)
	assert.Equal(t, 100*time.Millisecond, b(0))
	assert.Equal(t, 400*time.Millisecond, b(2))
	assert.Equal(t, time.Second, b(10))
}
