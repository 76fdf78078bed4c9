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

// Package duration parses the durations found in configuration files. Besides Go
// durations such as "90m" or "168h0m0s" it accepts a single count with a calendar
// unit: d (day), w (week), M (30 days) and y (365 days).
package duration

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

var (
	calendarRegex = regexp.MustCompile(`^(\d+)([dwMy])$`)

	ErrInvalidFormat = errors.New("invalid duration format")
)

const day = 24 * time.Hour

var calendarUnits = map[string]time.Duration{
	"d": day,
	"w": 7 * day,
	"M": 30 * day,
	"y": 365 * day,
}

// Parse returns the duration written in s.
func Parse(s string) (time.Duration, error) {
	if s == "" {
		return 0, ErrInvalidFormat
	}
	if m := calendarRegex.FindStringSubmatch(s); m != nil {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidFormat, s)
		}
		return time.Duration(n) * calendarUnits[m[2]], nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidFormat, s)
	}
	return d, nil
}

// MustParse is Parse for constants
func MustParse(s string) time.Duration {
	d, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("duration: parse error: %v", err))
	}
	return d
}

// DecodeHook lets mapstructure fill time.Duration fields from strings accepted by Parse.
func DecodeHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType || from.Kind() != reflect.String {
			return data, nil
		}
		return Parse(data.(string))
	}
}
