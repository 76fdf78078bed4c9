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

package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-arcade/roster/internal/roster/errcode"
	"github.com/go-arcade/roster/pkg/database"
	"github.com/go-arcade/roster/pkg/log"
	"github.com/go-arcade/roster/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/go-arcade/roster/internal/roster/service"

var tracer = otel.Tracer(tracerName)

// Clock returns the current time. Every expiry decision goes through it.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

// startSpan opens a span for op with the org and email attributes callers always log.
func startSpan(ctx context.Context, op, orgId, email string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("roster.op", op)}
	if orgId != "" {
		attrs = append(attrs, attribute.String("roster.org_id", orgId))
	}
	if email != "" {
		attrs = append(attrs, attribute.String("roster.email", email))
	}
	return tracer.Start(ctx, "roster."+op, trace.WithAttributes(attrs...))
}

// finish is the service boundary. Expected failures come back as their coded error;
// anything else is logged with context and replaced by ErrOperationFailed.
func finish(ctx context.Context, span trace.Span, rec *metrics.InvitationRecorder, op, orgId, email string, err error) error {
	defer span.End()
	if err == nil {
		rec.Observe(op, metrics.ResultOK)
		return nil
	}

	var coded *errcode.Error
	if errors.As(err, &coded) && errcode.IsExpected(coded) {
		rec.Observe(op, metrics.ResultRejected)
		span.SetAttributes(attribute.Int("roster.error_code", coded.Code))
		return coded
	}

	rec.Observe(op, metrics.ResultError)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	log.WithContext(ctx).Errorw("roster operation failed",
		"op", op,
		"orgId", orgId,
		"email", email,
		"error", err,
	)
	return errcode.ErrOperationFailed
}

// notFound maps gorm's record-not-found to a coded error and leaves other errors untouched.
func notFound(err error, coded *errcode.Error) error {
	if database.IsNotFound(err) {
		return coded
	}
	return err
}
