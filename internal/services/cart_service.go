package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/metrics"
	"storefront/internal/repos"
)

var (
	// Orders strictly above FreeShippingOver ship free; everything else pays FlatShipping.
	FreeShippingOver = decimal.NewFromInt(5000)
	FlatShipping     = decimal.NewFromInt(70)
)

type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

type CartLineView struct {
	repos.CartLineRow
	LineTotal float64
}

type Totals struct {
	Amount   float64
	Shipping float64
	Total    float64
}

type CartView struct {
	Lines []CartLineView
	Totals
}

func (v CartView) Empty() bool { return len(v.Lines) == 0 }

func lineTotal(qty int, price float64) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty)))
}

// ComputeTotals derives amount, shipping and grand total from the lines.
func ComputeTotals(lines []repos.CartLineRow) Totals {
	amount := decimal.Zero
	for _, l := range lines {
		amount = amount.Add(lineTotal(l.Quantity, l.DiscountedPrice))
	}
	shipping := FlatShipping
	if amount.GreaterThan(FreeShippingOver) {
		shipping = decimal.Zero
	}
	return Totals{
		Amount:   amount.Round(2).InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Total:    amount.Add(shipping).Round(2).InexactFloat64(),
	}
}

// Add puts one more unit of a product into the user's cart.
func (s *CartService) Add(userID, productID int64) error {
	if _, err := s.Prods.Get(productID); err != nil {
		if repos.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	if err := s.Carts.AddOrIncrement(userID, productID); err != nil {
		return err
	}
	metrics.CartMutations.WithLabelValues("add").Inc()
	return nil
}

func (s *CartService) View(userID int64) (CartView, error) {
	rows, err := s.Carts.Lines(userID)
	if err != nil {
		return CartView{}, err
	}
	v := CartView{Lines: make([]CartLineView, 0, len(rows)), Totals: ComputeTotals(rows)}
	for _, r := range rows {
		v.Lines = append(v.Lines, CartLineView{CartLineRow: r, LineTotal: lineTotal(r.Quantity, r.DiscountedPrice).Round(2).InexactFloat64()})
	}
	return v, nil
}

func (s *CartService) Remove(userID, lineID int64) error {
	if err := s.Carts.Remove(lineID, userID); err != nil {
		if repos.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	metrics.CartMutations.WithLabelValues("remove").Inc()
	return nil
}

// AdjustResult is what the incremental cart update reports back.
type AdjustResult struct {
	LineID    int64
	Quantity  int // 0 when the line was removed
	LineTotal float64
	Totals
}

// Adjust applies "inc", "dec" or "remove" to an owned line and recomputes the
// totals from the store.
func (s *CartService) Adjust(userID, lineID int64, action string) (AdjustResult, error) {
	line, err := s.Carts.Line(lineID, userID)
	if err != nil {
		if repos.IsNotFound(err) {
			return AdjustResult{}, ErrNotFound
		}
		return AdjustResult{}, err
	}

	var qty int
	switch action {
	case "inc":
		qty, err = s.Carts.Adjust(lineID, userID, 1)
	case "dec":
		qty, err = s.Carts.Adjust(lineID, userID, -1)
	case "remove":
		err = s.Carts.Remove(lineID, userID)
	default:
		return AdjustResult{}, fmt.Errorf("%w: unknown action %q", ErrInvalid, action)
	}
	if err != nil {
		if repos.IsNotFound(err) {
			return AdjustResult{}, ErrNotFound
		}
		return AdjustResult{}, err
	}

	metrics.CartMutations.WithLabelValues(action).Inc()

	rows, err := s.Carts.Lines(userID)
	if err != nil {
		return AdjustResult{}, err
	}
	return AdjustResult{
		LineID:    lineID,
		Quantity:  qty,
		LineTotal: lineTotal(qty, line.DiscountedPrice).Round(2).InexactFloat64(),
		Totals:    ComputeTotals(rows),
	}, nil
}

func (s *CartService) Contains(userID, productID int64) (bool, error) {
	return s.Carts.Contains(userID, productID)
}

func (s *CartService) Count(userID int64) (int, error) {
	return s.Carts.Count(userID)
}
