package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is one of the three currencies the ledger keeps apart.
type Currency string

const (
	CurrencyYER Currency = "YER"
	CurrencySAR Currency = "SAR"
	CurrencyOMR Currency = "OMR"
)

// Currencies lists every supported currency in reporting order.
var Currencies = []Currency{CurrencyYER, CurrencySAR, CurrencyOMR}

func (c Currency) Valid() bool {
	switch c {
	case CurrencyYER, CurrencySAR, CurrencyOMR:
		return true
	}

	return false
}

// PersonType distinguishes customers from suppliers.
type PersonType string

const (
	PersonCustomer PersonType = "customer"
	PersonSupplier PersonType = "supplier"
)

func (t PersonType) Valid() bool {
	return t == PersonCustomer || t == PersonSupplier
}

// InvoiceStatus tells whether an invoice was settled at once or left on account.
type InvoiceStatus string

const (
	StatusCash   InvoiceStatus = "cash"
	StatusCredit InvoiceStatus = "credit"
)

// VoucherType is receipt (cash in from a customer) or payment (cash out to a supplier).
type VoucherType string

const (
	VoucherReceipt VoucherType = "receipt"
	VoucherPayment VoucherType = "payment"
)

// PersonType returns the party a voucher of this type settles with.
func (t VoucherType) PersonType() PersonType {
	if t == VoucherPayment {
		return PersonSupplier
	}

	return PersonCustomer
}

// BalanceType is the side of a legacy opening balance.
type BalanceType string

const (
	BalanceDebit  BalanceType = "debit"
	BalanceCredit BalanceType = "credit"
)

// Person is a customer or a supplier.
type Person struct {
	ID        uuid.UUID
	Type      PersonType
	Name      string
	Phone     string
	Region    string
	CreatedAt time.Time
}

// Category is a stock item. Stock never drops below zero.
type Category struct {
	ID        uuid.UUID
	Name      string
	Price     decimal.Decimal
	Currency  Currency
	Stock     int64
	CreatedAt time.Time
}

// Sale is an invoice issued to a customer.
type Sale struct {
	ID           uuid.UUID
	CustomerID   uuid.UUID
	CustomerName string
	QatType      string
	Quantity     int64
	UnitPrice    decimal.Decimal
	Total        decimal.Decimal
	Currency     Currency
	Status       InvoiceStatus
	Date         time.Time
	IsReturned   bool
	CreatedAt    time.Time
}

// Purchase is an invoice received from a supplier.
type Purchase struct {
	ID           uuid.UUID
	SupplierID   uuid.UUID
	SupplierName string
	QatType      string
	Quantity     int64
	UnitPrice    decimal.Decimal
	Total        decimal.Decimal
	Currency     Currency
	Status       InvoiceStatus
	Date         time.Time
	IsReturned   bool
	CreatedAt    time.Time
}

// Waste records spoiled stock.
type Waste struct {
	ID        uuid.UUID
	QatType   string
	Quantity  int64
	Date      time.Time
	Notes     string
	CreatedAt time.Time
}

// Voucher records cash received from a customer or paid to a supplier.
type Voucher struct {
	ID         uuid.UUID
	Type       VoucherType
	PersonID   uuid.UUID
	PersonName string
	PersonType PersonType
	Amount     decimal.Decimal
	Currency   Currency
	Date       time.Time
	Notes      string
	CreatedAt  time.Time
}

// OpeningBalance is debt carried over from before the system existed.
// It is reported next to the ledger, never folded into it.
type OpeningBalance struct {
	ID          uuid.UUID
	PersonID    uuid.UUID
	PersonName  string
	PersonType  PersonType
	Amount      decimal.Decimal
	Currency    Currency
	BalanceType BalanceType
	Date        time.Time
	Notes       string
	CreatedAt   time.Time
}

// ExchangeRates converts foreign currencies into YER for display.
type ExchangeRates struct {
	SARToYER  decimal.Decimal
	OMRToYER  decimal.Decimal
	UpdatedAt time.Time
}

// LineTotal is the only way an invoice total is derived.
func LineTotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity))
}
