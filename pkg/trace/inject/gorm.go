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

// Package inject attaches OpenTelemetry spans to gorm and redis clients.
package inject

import (
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	gormTracerName = "github.com/go-arcade/roster/pkg/trace/inject/gorm"
	gormSpanKey    = "otel:span"
)

// GormPlugin implements gorm.Plugin, one client span per statement.
type GormPlugin struct {
	// WithQuery records the SQL text
	WithQuery bool
	tracer    trace.Tracer
}

func (p *GormPlugin) Name() string {
	return "opentelemetry"
}

func (p *GormPlugin) Initialize(db *gorm.DB) error {
	if p.tracer == nil {
		p.tracer = otel.Tracer(gormTracerName)
	}
	cb := db.Callback()
	register := []error{
		cb.Create().Before("gorm:create").Register("otel:before_create", p.before("create")),
		cb.Query().Before("gorm:query").Register("otel:before_query", p.before("query")),
		cb.Update().Before("gorm:update").Register("otel:before_update", p.before("update")),
		cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before("delete")),
		cb.Row().Before("gorm:row").Register("otel:before_row", p.before("row")),
		cb.Raw().Before("gorm:raw").Register("otel:before_raw", p.before("raw")),

		cb.Create().After("gorm:create").Register("otel:after_create", p.after),
		cb.Query().After("gorm:query").Register("otel:after_query", p.after),
		cb.Update().After("gorm:update").Register("otel:after_update", p.after),
		cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after),
		cb.Row().After("gorm:row").Register("otel:after_row", p.after),
		cb.Raw().After("gorm:raw").Register("otel:after_raw", p.after),
	}
	for _, err := range register {
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *GormPlugin) before(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Statement == nil || db.Statement.Context == nil {
			return
		}
		ctx, span := p.tracer.Start(db.Statement.Context, "gorm."+op, trace.WithSpanKind(trace.SpanKindClient))
		db.Statement.Context = ctx
		db.InstanceSet(gormSpanKey, span)

		attrs := []attribute.KeyValue{
			attribute.String("db.system", db.Dialector.Name()),
			attribute.String("db.operation", op),
		}
		if db.Statement.Table != "" {
			attrs = append(attrs, attribute.String("db.sql.table", db.Statement.Table))
		}
		span.SetAttributes(attrs...)
	}
}

func (p *GormPlugin) after(db *gorm.DB) {
	v, ok := db.InstanceGet(gormSpanKey)
	if !ok {
		return
	}
	span, ok := v.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	if p.WithQuery {
		if sql := strings.TrimSpace(db.Statement.SQL.String()); sql != "" {
			span.SetAttributes(attribute.String("db.statement", sql))
		}
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

	if err := db.Error; err != nil && err != gorm.ErrRecordNotFound {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// RegisterGormPlugin installs the plugin on db.
func RegisterGormPlugin(db *gorm.DB, withQuery bool) error {
	return db.Use(&GormPlugin{WithQuery: withQuery})
}
