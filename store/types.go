// Package store is a small order-management domain. Its shapes carry
// fixture hints and are manufactured end to end by the example tests.
package store

import (
	"fmt"
	"time"
)

// Product is an individual item available for sale. Prices are in cents.
type Product struct {
	ID          int64     `json:"id"`
	SKU         string    `json:"sku"                   fixture:"len=8"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty" fixture:"min=0;max=40"`
	PriceCents  int64     `json:"price_cents"           fixture:"min=100;max=99999"`
	Inventory   int       `json:"inventory_count"       fixture:"min=0;max=500"`
	CreatedAt   time.Time `json:"created_at"`
}

// Address is a shipping address.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	Zip    string `json:"zip"    fixture:"len=5"`
}

// Customer places orders. A customer may have been referred by another one.
type Customer struct {
	ID       int64     `json:"id"`
	Email    string    `json:"email"     fixture:"strategy=email;pii"`
	FullName string    `json:"full_name" fixture:"pii"`
	Address  *Address  `json:"address"`
	IsActive bool      `json:"is_active"`
	Referrer *Customer `json:"referrer,omitempty"`
}

// Order is a transaction made by a customer.
type Order struct {
	ID         int64         `json:"id"`
	CustomerID int64         `json:"customer_id"`
	Status     OrderStatus   `json:"status"`
	TotalCents int64         `json:"total_cents"`
	Items      []OrderItem   `json:"items"       fixture:"count=3"`
	Notes      Notes         `json:"-"           fixture:"count=2"`
	Payment    PaymentMethod `json:"-"`
	OrderedAt  time.Time     `json:"ordered_at"`
}

// OrderItem is a product line within an order. It snapshots the price at
// the time of purchase.
type OrderItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"   fixture:"min=1;max=10"`
	UnitPrice int64  `json:"unit_price" fixture:"min=100;max=99999"`
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Values lists every status.
func (OrderStatus) Values() []OrderStatus {
	return []OrderStatus{StatusPending, StatusPaid, StatusShipped, StatusCancelled}
}

// PaymentMethod settles an order.
type PaymentMethod interface {
	Charge(cents int64) string
}

// Card is paid by value.
type Card struct {
	Last4 string `fixture:"len=4"`
}

func (c Card) Charge(cents int64) string {
	return fmt.Sprintf("card *%s: %d", c.Last4, cents)
}

// Voucher is redeemed through a pointer.
type Voucher struct {
	Code string `fixture:"len=6"`
}

func (v *Voucher) Charge(cents int64) string {
	return fmt.Sprintf("voucher %s: %d", v.Code, cents)
}

// Notes is an append-only log filled through its own methods.
type Notes struct {
	lines []string
}

func (n *Notes) Add(line string) { n.lines = append(n.lines, line) }
func (n *Notes) Len() int        { return len(n.lines) }

// Lines returns a copy of the log.
func (n *Notes) Lines() []string { return append([]string(nil), n.lines...) }

// Page is one page of a listing. Its items are stored as any; the element
// type is its T parameter.
type Page struct {
	_      struct{} `fixture:"params=T"`
	Items  []any    `fixture:"type=[]T;count=2"`
	Total  int      `fixture:"min=2;max=2"`
	cursor string
}

// SetCursor records the continuation token of the page.
func (p *Page) SetCursor(c string) { p.cursor = c }

func (p Page) Cursor() string { return p.cursor }

// Audited wraps a page with the identity of whoever requested it.
type Audited struct {
	Page   `fixture:"args=T"`
	_      struct{} `fixture:"params=T"`
	Author string   `fixture:"pii"`
}
