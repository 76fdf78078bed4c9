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

package statemachine

import (
	"errors"
	"strings"
	"testing"
)

type OrderStatus string

const (
	OrderCreated   OrderStatus = "CREATED"
	OrderPaid      OrderStatus = "PAID"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCanceled  OrderStatus = "CANCELED"
)

func newOrderMachine() *StateMachine[OrderStatus] {
	return New[OrderStatus]().
		Allow(OrderCreated, OrderPaid, OrderCanceled).
		Allow(OrderPaid, OrderShipped, OrderCanceled).
		Allow(OrderShipped, OrderDelivered)
}

func TestStateMachine_CanTransition(t *testing.T) {
	sm := newOrderMachine()

	if !sm.CanTransition(OrderCreated, OrderPaid) {
		t.Error("expected CREATED -> PAID to be valid")
	}
	if sm.CanTransition(OrderCreated, OrderDelivered) {
		t.Error("expected CREATED -> DELIVERED to be invalid")
	}
	if sm.CanTransition(OrderDelivered, OrderCreated) {
		t.Error("expected no transition out of DELIVERED")
	}
}

func TestStateMachine_Validate(t *testing.T) {
	sm := newOrderMachine()

	if err := sm.Validate(OrderCreated, OrderPaid); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := sm.Validate(OrderPaid, OrderCreated)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestStateMachine_Validators(t *testing.T) {
	sm := newOrderMachine()
	rejected := errors.New("payment not allowed")
	sm.AddValidator(func(from, to OrderStatus) error {
		if to == OrderPaid {
			return rejected
		}
		return nil
	})

	if err := sm.Validate(OrderCreated, OrderPaid); !errors.Is(err, rejected) {
		t.Errorf("expected validator error, got %v", err)
	}
	if err := sm.Validate(OrderCreated, OrderCanceled); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStateMachine_IsTerminal(t *testing.T) {
	sm := newOrderMachine()

	for _, s := range []OrderStatus{OrderDelivered, OrderCanceled} {
		if !sm.IsTerminal(s) {
			t.Errorf("expected %v to be terminal", s)
		}
	}
	if sm.IsTerminal(OrderCreated) {
		t.Error("expected CREATED to be non-terminal")
	}
}

func TestStateMachine_States(t *testing.T) {
	sm := newOrderMachine()

	all := sm.GetAllStates()
	if len(all) != 5 {
		t.Fatalf("expected 5 states, got %d", len(all))
	}
	if all[0] != OrderCreated {
		t.Errorf("expected registration order, got %v first", all[0])
	}

	next := sm.GetValidNextStates(OrderCreated)
	next[0] = OrderDelivered
	if sm.GetValidNextStates(OrderCreated)[0] != OrderPaid {
		t.Error("GetValidNextStates must return a copy")
	}
}

func TestStateMachine_ToDot(t *testing.T) {
	dot := newOrderMachine().ToDot("order")
	if !strings.HasPrefix(dot, "digraph order {") {
		t.Errorf("unexpected header: %s", dot)
	}
	if !strings.Contains(dot, `"CREATED" -> "PAID";`) {
		t.Errorf("missing edge in %s", dot)
	}
}
