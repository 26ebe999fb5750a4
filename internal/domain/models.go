package domain

import "strings"

// Category codes match the values stored in products.category.
type Category string

const (
	CategoryMobile     Category = "M"
	CategoryLaptop     Category = "L"
	CategoryTopWear    Category = "TW"
	CategoryBottomWear Category = "BW"
	CategoryShoes      Category = "S"
)

func (c Category) Label() string {
	switch c {
	case CategoryMobile:
		return "Mobile"
	case CategoryLaptop:
		return "Laptop"
	case CategoryTopWear:
		return "Top Wear"
	case CategoryBottomWear:
		return "Bottom Wear"
	case CategoryShoes:
		return "Shoes"
	}
	return string(c)
}

func (c Category) Valid() bool { return c.Label() != string(c) }

// Slug is the listing path segment for the category.
func (c Category) Slug() string {
	switch c {
	case CategoryMobile:
		return "mobile"
	case CategoryLaptop:
		return "laptops"
	case CategoryTopWear:
		return "topwear"
	case CategoryBottomWear:
		return "bottomwear"
	case CategoryShoes:
		return "shoes"
	}
	return ""
}

var Categories = []Category{CategoryTopWear, CategoryBottomWear, CategoryMobile, CategoryLaptop, CategoryShoes}

type Product struct {
	ID              int64    `db:"id"`
	Title           string   `db:"title"`
	SellingPrice    float64  `db:"selling_price"`
	DiscountedPrice float64  `db:"discounted_price"`
	Description     string   `db:"description"`
	Brand           string   `db:"brand"`
	Category        Category `db:"category"`
	Image           string   `db:"product_image"`
}

// States are the regions an address may be in.
var States = []string{
	"Punjab",
	"Sindh",
	"Khyber Pakhtunkhwa",
	"Balochistan",
	"Islamabad Capital Territory",
	"Gilgit-Baltistan",
	"Azad Jammu and Kashmir",
}

func ValidState(s string) bool {
	for _, st := range States {
		if st == s {
			return true
		}
	}
	return false
}

// Customer is a saved shipping profile; an account may own many.
type Customer struct {
	ID       int64  `db:"id"`
	UserID   int64  `db:"user_id"`
	Name     string `db:"name"`
	Locality string `db:"locality"`
	City     string `db:"city"`
	Zipcode  int    `db:"zipcode"`
	State    string `db:"state"`
}

type CartLine struct {
	ID        int64 `db:"id"`
	UserID    int64 `db:"user_id"`
	ProductID int64 `db:"product_id"`
	Quantity  int   `db:"quantity"`
}

type PaymentMethod string

const (
	PaymentCOD       PaymentMethod = "COD"
	PaymentDebit     PaymentMethod = "DEBIT"
	PaymentJazzCash  PaymentMethod = "JAZZCASH"
	PaymentEasyPaisa PaymentMethod = "EASYPAISA"
	PaymentSadaPay   PaymentMethod = "SADAPAY"
)

var PaymentMethods = []PaymentMethod{PaymentCOD, PaymentDebit, PaymentJazzCash, PaymentEasyPaisa, PaymentSadaPay}

func (p PaymentMethod) Label() string {
	switch p {
	case PaymentCOD:
		return "Cash on Delivery"
	case PaymentDebit:
		return "Debit / Credit Card"
	case PaymentJazzCash:
		return "JazzCash"
	case PaymentEasyPaisa:
		return "EasyPaisa"
	case PaymentSadaPay:
		return "SadaPay"
	}
	return string(p)
}

// ParsePaymentMethod falls back to cash on delivery for empty or unknown input.
func ParsePaymentMethod(s string) PaymentMethod {
	p := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	for _, m := range PaymentMethods {
		if m == p {
			return p
		}
	}
	return PaymentCOD
}

type Order struct {
	ID            int64         `db:"id"`
	UserID        int64         `db:"user_id"`
	CustomerID    int64         `db:"customer_id"`
	ProductID     int64         `db:"product_id"`
	Quantity      int           `db:"quantity"`
	OrderedDate   string        `db:"ordered_date"`
	Status        OrderStatus   `db:"status"`
	PaymentMethod PaymentMethod `db:"payment_method"`
	TrackingID    string        `db:"tracking_id"`
}
