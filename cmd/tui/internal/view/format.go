package view

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

const storeTimeout = 5 * time.Second

// FormatAmount renders v with two decimals and its currency code.
func FormatAmount(v decimal.Decimal, cur entity.Currency) string {
	return v.StringFixed(2) + " " + string(cur)
}

func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// StoreCtx returns a context with the standard timeout for store reads.
func StoreCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}
