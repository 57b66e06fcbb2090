package engine_test

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
	"github.com/MrJamesThe3rd/daftar/internal/entity/memstore"
)

var (
	aliSaleh  = entity.Person{ID: uuid.New(), Type: entity.PersonCustomer, Name: "Ali Saleh"}
	aliHassan = entity.Person{ID: uuid.New(), Type: entity.PersonCustomer, Name: "Ali Hassan"}
	mohammed  = entity.Person{ID: uuid.New(), Type: entity.PersonCustomer, Name: "Mohammed"}
	omar      = entity.Person{ID: uuid.New(), Type: entity.PersonSupplier, Name: "Omar"}
	sabri     = entity.Category{ID: uuid.New(), Name: "Sabri", Price: decimal.NewFromInt(1500), Currency: entity.CurrencyYER, Stock: 10}
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// fixture returns a registry where Mohammed owes 1000 YER and "Ali" is
// ambiguous between two customers.
func fixture() *entity.Snapshot {
	day := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	return &entity.Snapshot{
		Customers:  []entity.Person{aliSaleh, aliHassan, mohammed},
		Suppliers:  []entity.Person{omar},
		Categories: []entity.Category{sabri},
		Sales: []entity.Sale{
			{
				ID:           uuid.New(),
				CustomerID:   mohammed.ID,
				CustomerName: mohammed.Name,
				QatType:      "Sabri",
				Quantity:     2,
				UnitPrice:    dec(500),
				Total:        dec(1000),
				Currency:     entity.CurrencyYER,
				Status:       entity.StatusCredit,
				Date:         day,
			},
		},
		Purchases: []entity.Purchase{
			{
				ID:           uuid.New(),
				SupplierID:   omar.ID,
				SupplierName: omar.Name,
				QatType:      "Sabri",
				Quantity:     4,
				UnitPrice:    dec(300),
				Total:        dec(1200),
				Currency:     entity.CurrencyYER,
				Status:       entity.StatusCredit,
				Date:         day,
			},
		},
	}
}

func memstoreWithFixture() *memstore.Store {
	return memstore.NewSeeded(fixture())
}
