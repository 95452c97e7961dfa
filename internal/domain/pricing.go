package domain

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "tablepos/internal/errors"
)

var hundred = decimal.NewFromInt(100)

// MaxTaxPct is the highest tax rate accepted from a client.
var MaxTaxPct = decimal.NewFromInt(100)

// TaxPctPlaces is the scale of the stored tax rate.
const TaxPctPlaces = 2

// MaxQuantity is the largest quantity one order line can hold.
const MaxQuantity = math.MaxInt32

var maxMoney = decimal.NewFromInt(math.MaxInt64)

type CartItem struct {
	ProductID *int64
	Name      string
	UnitPrice int64
	Quantity  int
}

type PricedItem struct {
	ProductID *int64
	Name      string
	UnitPrice int64
	Quantity  int
	LineTotal int64
}

type Pricing struct {
	Items     []PricedItem
	TaxPct    decimal.Decimal
	Discount  int64
	Subtotal  int64
	TaxAmount int64
	Total     int64
}

// CartItems returns the cleaned items in cart form so a priced cart can be
// priced again.
func (p Pricing) CartItems() []CartItem {
	items := make([]CartItem, len(p.Items))
	for i, it := range p.Items {
		items[i] = CartItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		}
	}
	return items
}

// DropBlankItems removes items whose name is empty after trimming. Blank
// lines are dropped and the rest of the cart continues; the caller only
// fails when nothing is left.
func DropBlankItems(items []CartItem) []CartItem {
	kept := make([]CartItem, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			continue
		}
		kept = append(kept, it)
	}
	return kept
}

// SanitizeItem trims the name and clamps quantity to at least 1 and unit
// price to at least 0.
func SanitizeItem(it CartItem) CartItem {
	it.Name = strings.TrimSpace(it.Name)
	if it.Quantity < 1 {
		it.Quantity = 1
	}

	if it.UnitPrice < 0 {
		it.UnitPrice = 0
	}
	return it
}

// TaxAmount is subtotal × taxPct / 100 rounded to whole currency units,
// halves away from zero.
func TaxAmount(subtotal int64, taxPct decimal.Decimal) int64 {
	return decimal.NewFromInt(subtotal).Mul(taxPct).Div(hundred).Round(0).IntPart()
}

// HasTaxPctScale reports whether taxPct needs no more than TaxPctPlaces
// fraction digits. 5.100 qualifies, 5.125 does not.
func HasTaxPctScale(taxPct decimal.Decimal) bool {
	return taxPct.Equal(taxPct.Round(TaxPctPlaces))
}

func overflowError(field string) error {
	return apperrors.NewValidationError("amount out of range", apperrors.ValidationDetail{
		Field:   field,
		Message: "amount exceeds the largest supported value",
	})
}

// PriceCart prices a cart. taxPct is rounded to TaxPctPlaces before use so
// the stored rate reproduces the tax amount. Amounts that do not fit in an
// int64 are rejected with a ValidationError.
func PriceCart(items []CartItem, taxPct decimal.Decimal, discount int64) (*Pricing, error) {
	kept := DropBlankItems(items)
	if len(kept) == 0 {
		return nil, apperrors.NewValidationError("cart is empty", apperrors.ValidationDetail{
			Field:   "items",
			Message: "cart must contain at least one named item",
		})
	}

	if taxPct.IsNegative() {
		taxPct = decimal.Zero
	}
	taxPct = taxPct.Round(TaxPctPlaces)
	if discount < 0 {
		discount = 0
	}

	priced := make([]PricedItem, 0, len(kept))
	var subtotal int64
	for _, raw := range kept {
		it := SanitizeItem(raw)
		if it.Quantity > MaxQuantity || it.UnitPrice > math.MaxInt64/int64(it.Quantity) {
			return nil, overflowError("items")
		}
		lineTotal := it.UnitPrice * int64(it.Quantity)
		if subtotal > math.MaxInt64-lineTotal {
			return nil, overflowError("items")
		}
		subtotal += lineTotal
		priced = append(priced, PricedItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			LineTotal: lineTotal,
		})
	}

	tax := decimal.NewFromInt(subtotal).Mul(taxPct).Div(hundred).Round(0)
	if tax.Add(decimal.NewFromInt(subtotal)).GreaterThan(maxMoney) {
		return nil, overflowError("taxPct")
	}
	taxAmount := tax.IntPart()
	total := subtotal + taxAmount - discount
	if total < 0 {
		total = 0
	}

	return &Pricing{
		Items:     priced,
		TaxPct:    taxPct,
		Discount:  discount,
		Subtotal:  subtotal,
		TaxAmount: taxAmount,
		Total:     total,
	}, nil
}
