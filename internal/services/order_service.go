package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/repos"
)

type OrderService struct {
	Orders    *repos.OrderRepo
	Customers *repos.CustomerRepo
	Prods     *repos.ProductRepo

	// NewTrackingID is swappable for tests.
	NewTrackingID func() string
}

func NewOrderService(orders *repos.OrderRepo, customers *repos.CustomerRepo, prods *repos.ProductRepo) *OrderService {
	return &OrderService{Orders: orders, Customers: customers, Prods: prods, NewTrackingID: uuid.NewString}
}

// BuyNow describes a single-product purchase. Either CustomerID names an
// address owned by the buyer, or NewAddress is saved alongside the order.
type BuyNow struct {
	ProductID     int64
	Quantity      int
	CustomerID    int64
	NewAddress    *domain.Customer
	PaymentMethod domain.PaymentMethod
}

// PlaceBuyNow creates exactly one Accepted order and returns it.
func (s *OrderService) PlaceBuyNow(userID int64, req BuyNow) (domain.Order, error) {
	if req.Quantity < 1 {
		req.Quantity = 1
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.PaymentCOD
	}
	if _, err := s.Prods.Get(req.ProductID); err != nil {
		if repos.IsNotFound(err) {
			return domain.Order{}, ErrNotFound
		}
		return domain.Order{}, err
	}

	o := domain.Order{
		UserID:        userID,
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		Status:        domain.StatusAccepted,
		PaymentMethod: req.PaymentMethod,
		TrackingID:    s.NewTrackingID(),
	}

	switch {
	case req.NewAddress != nil:
		c := *req.NewAddress
		c.UserID = userID
		if err := s.Orders.CreateWithAddress(c, &o); err != nil {
			return domain.Order{}, err
		}
	case req.CustomerID > 0:
		if err := s.ownAddress(userID, req.CustomerID); err != nil {
			return domain.Order{}, err
		}
		o.CustomerID = req.CustomerID
		if err := s.Orders.Create(&o); err != nil {
			return domain.Order{}, err
		}
	default:
		return domain.Order{}, fmt.Errorf("%w: choose or enter a shipping address", ErrInvalid)
	}

	metrics.OrdersPlaced.WithLabelValues("buy_now").Inc()
	return o, nil
}

// Checkout converts the whole cart into Accepted orders, one per line, and
// empties the cart in the same transaction.
func (s *OrderService) Checkout(userID, customerID int64, pm domain.PaymentMethod) ([]domain.Order, error) {
	if customerID <= 0 {
		return nil, fmt.Errorf("%w: choose a shipping address", ErrInvalid)
	}
	if pm == "" {
		pm = domain.PaymentCOD
	}
	if err := s.ownAddress(userID, customerID); err != nil {
		return nil, err
	}
	orders, err := s.Orders.CreateFromCart(userID, customerID, pm, domain.StatusAccepted, s.NewTrackingID)
	if err != nil {
		if errors.Is(err, repos.ErrCartEmpty) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}
	metrics.OrdersPlaced.WithLabelValues("checkout").Add(float64(len(orders)))
	return orders, nil
}

func (s *OrderService) ownAddress(userID, customerID int64) error {
	if _, err := s.Customers.GetOwned(customerID, userID); err != nil {
		if repos.IsNotFound(err) {
			return fmt.Errorf("%w: address", ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *OrderService) ListForUser(userID int64) ([]repos.OrderRow, error) {
	return s.Orders.ListByUser(userID)
}

// Track looks up orders by tracking id. Unknown ids give an empty result.
func (s *OrderService) Track(trackingID string) ([]repos.OrderRow, error) {
	if trackingID == "" {
		return []repos.OrderRow{}, nil
	}
	return s.Orders.ByTracking(trackingID)
}

// Cancel moves an owned order to Cancelled. An order already Cancelled or
// Returned is left as is and ErrNoOp is returned.
func (s *OrderService) Cancel(userID, orderID int64) (domain.Order, error) {
	return s.customerMove(userID, orderID, domain.StatusCancelled)
}

// Return moves an owned order to Returned; ErrNoOp when already Returned.
func (s *OrderService) Return(userID, orderID int64) (domain.Order, error) {
	return s.customerMove(userID, orderID, domain.StatusReturned)
}

func (s *OrderService) customerMove(userID, orderID int64, to domain.OrderStatus) (domain.Order, error) {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		if repos.IsNotFound(err) {
			return domain.Order{}, ErrNotFound
		}
		return domain.Order{}, err
	}
	if o.UserID != userID {
		return o, ErrForbidden
	}
	if !o.Status.CanTransition(to) {
		return o, ErrNoOp
	}
	if err := s.Orders.UpdateStatus(o.ID, o.Status, to); err != nil {
		if repos.IsNotFound(err) {
			// status changed underneath us; report the current state
			cur, gerr := s.Orders.Get(orderID)
			if gerr != nil {
				return o, gerr
			}
			return cur, ErrNoOp
		}
		return o, err
	}
	metrics.OrderStatusChanges.WithLabelValues(string(to)).Inc()
	o.Status = to
	return o, nil
}

// SetStatus is the admin fulfilment path; it follows the transition table.
func (s *OrderService) SetStatus(orderID int64, to domain.OrderStatus) (domain.Order, error) {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		if repos.IsNotFound(err) {
			return domain.Order{}, ErrNotFound
		}
		return domain.Order{}, err
	}
	if !o.Status.CanTransition(to) {
		return o, fmt.Errorf("%w: %s -> %s", ErrInvalid, o.Status, to)
	}
	if err := s.Orders.UpdateStatus(o.ID, o.Status, to); err != nil {
		if repos.IsNotFound(err) {
			return o, fmt.Errorf("%w: order changed, reload", ErrInvalid)
		}
		return o, err
	}
	metrics.OrderStatusChanges.WithLabelValues(string(to)).Inc()
	o.Status = to
	return o, nil
}

func (s *OrderService) Latest(limit int) ([]repos.OrderRow, error) {
	return s.Orders.ListLatest(limit)
}
