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

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels of InvitationsTotal.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	// InvitationsTotal counts invitation and membership operations by outcome
	InvitationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roster",
			Name:      "invitations_total",
			Help:      "Total number of invitation operations by result",
		},
		[]string{"op", "result"},
	)

	// InvitationSweepExpiredTotal counts invitations moved to expired by the cleanup sweep
	InvitationSweepExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "roster",
			Name:      "invitation_sweep_expired_total",
			Help:      "Total number of pending invitations expired by the cleanup sweep",
		},
	)

	invitationMetricsOnce sync.Once
)

// InvitationRecorder records service outcomes. The zero value and nil both discard.
type InvitationRecorder struct {
	ops     *prometheus.CounterVec
	expired prometheus.Counter
}

// NewInvitationRecorder returns a recorder backed by the package counters.
func NewInvitationRecorder() *InvitationRecorder {
	return &InvitationRecorder{ops: InvitationsTotal, expired: InvitationSweepExpiredTotal}
}

// NewInvitationRecorderFor returns a recorder on fresh counters registered with registry.
// Tests use it to read values without sharing global state.
func NewInvitationRecorderFor(registry prometheus.Registerer) *InvitationRecorder {
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster",
		Name:      "invitations_total",
		Help:      "Total number of invitation operations by result",
	}, []string{"op", "result"})
	expired := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "roster",
		Name:      "invitation_sweep_expired_total",
		Help:      "Total number of pending invitations expired by the cleanup sweep",
	})
	if registry != nil {
		registry.MustRegister(ops, expired)
	}
	return &InvitationRecorder{ops: ops, expired: expired}
}

// RegisterInvitationMetrics registers the package counters once.
func RegisterInvitationMetrics(registry *prometheus.Registry) {
	invitationMetricsOnce.Do(func() {
		registry.MustRegister(InvitationsTotal, InvitationSweepExpiredTotal)
	})
}

// Observe counts one operation with the given result label.
func (r *InvitationRecorder) Observe(op, result string) {
	if r == nil || r.ops == nil {
		return
	}
	r.ops.WithLabelValues(op, result).Inc()
}

// AddExpired adds n swept invitations.
func (r *InvitationRecorder) AddExpired(n int64) {
	if r == nil || r.expired == nil || n <= 0 {
		return
	}
	r.expired.Add(float64(n))
}

// Ops exposes the operation counter for inspection.
func (r *InvitationRecorder) Ops() *prometheus.CounterVec {
	return r.ops
}

// Expired exposes the sweep counter for inspection.
func (r *InvitationRecorder) Expired() prometheus.Counter {
	return r.expired
}
