package domain

import "fmt"

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusAccepted  OrderStatus = "Accepted"
	StatusPacked    OrderStatus = "Packed"
	StatusOnTheWay  OrderStatus = "On The Way"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
	StatusReturned  OrderStatus = "Returned"
)

// LegacyCancel is the old stored spelling of StatusCancelled.
const LegacyCancel = "Cancel"

var OrderStatuses = []OrderStatus{
	StatusPending, StatusAccepted, StatusPacked, StatusOnTheWay,
	StatusDelivered, StatusCancelled, StatusReturned,
}

// ParseOrderStatus accepts the legacy "Cancel" spelling as Cancelled.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	if s == LegacyCancel {
		return StatusCancelled, true
	}
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Scan reads a stored status, folding legacy spellings into the enum.
func (s *OrderStatus) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("order status: unsupported type %T", src)
	}
	st, ok := ParseOrderStatus(raw)
	if !ok {
		return fmt.Errorf("order status: unknown value %q", raw)
	}
	*s = st
	return nil
}

// Stored lists every spelling of s that may be found in the store.
func (s OrderStatus) Stored() []string {
	if s == StatusCancelled {
		return []string{string(s), LegacyCancel}
	}
	return []string{string(s)}
}

// transitions lists every status reachable from a given status. Nothing leads
// back to Pending.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusAccepted, StatusCancelled, StatusReturned},
	StatusAccepted:  {StatusPacked, StatusCancelled, StatusReturned},
	StatusPacked:    {StatusOnTheWay, StatusCancelled, StatusReturned},
	StatusOnTheWay:  {StatusDelivered, StatusCancelled, StatusReturned},
	StatusDelivered: {StatusCancelled, StatusReturned},
	StatusCancelled: {StatusReturned},
	StatusReturned:  {},
}

func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Next lists the statuses an order may move to from s.
func (s OrderStatus) Next() []OrderStatus { return transitions[s] }

// Cancellable reports whether a customer cancel changes anything.
func (s OrderStatus) Cancellable() bool { return s.CanTransition(StatusCancelled) }

// Returnable reports whether a customer return changes anything.
func (s OrderStatus) Returnable() bool { return s.CanTransition(StatusReturned) }
