package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

func begin(t *testing.T) (entity.Tx, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(writeLockKey).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := New(db).Begin(context.Background())
	require.NoError(t, err)

	return tx, mock
}

func TestMapError(t *testing.T) {
	type args struct {
		err error
		fk  error
	}

	type testCase struct {
		name string
		args args
		want error
	}

	tests := []testCase{
		{
			name: "UniqueViolation",
			args: args{err: &pgconn.PgError{Code: codeUniqueViolation}},
			want: entity.ErrDuplicate,
		},
		{
			name: "ForeignKeyOnDelete",
			args: args{err: &pgconn.PgError{Code: codeForeignKeyViolation}, fk: entity.ErrHasDependents},
			want: entity.ErrHasDependents,
		},
		{
			name: "ForeignKeyOnInsert",
			args: args{err: &pgconn.PgError{Code: codeForeignKeyViolation}, fk: entity.ErrNotFound},
			want: entity.ErrNotFound,
		},
		{
			name: "NetworkFailure",
			args: args{err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}},
			want: entity.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError("op", tt.args.err, tt.args.fk), tt.want)
		})
	}

	other := errors.New("syntax error")
	got := mapError("op", other, nil)
	assert.ErrorIs(t, got, other)
	assert.NotErrorIs(t, got, entity.ErrUnavailable)
}

func TestStore_BeginUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(&net.OpError{Op: "dial", Err: errors.New("connection refused")})

	_, err = New(db).Begin(context.Background())
	assert.ErrorIs(t, err, entity.ErrUnavailable)
}

func TestTx_CreatePerson(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m sqlmock.Sqlmock)
		wantErr   error
	}

	id := uuid.New()
	now := time.Now()

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta("INSERT INTO people")).
					WithArgs("customer", "Mohammed", "777", "Sanaa").
					WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id.String(), now))
			},
		},
		{
			name: "Duplicate",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta("INSERT INTO people")).
					WillReturnError(&pgconn.PgError{Code: codeUniqueViolation})
			},
			wantErr: entity.ErrDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, mock := begin(t)
			tt.setupMock(mock)

			p := &entity.Person{Type: entity.PersonCustomer, Name: " Mohammed ", Phone: "777", Region: "Sanaa"}
			err := tx.CreatePerson(context.Background(), p)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, id, p.ID)
				assert.Equal(t, "Mohammed", p.Name)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTx_DeletePerson(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m sqlmock.Sqlmock)
		wantErr   error
	}

	id := uuid.New()

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta("DELETE FROM people")).
					WithArgs(id, "supplier").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "Missing",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta("DELETE FROM people")).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: entity.ErrNotFound,
		},
		{
			name: "ReferencedByInvoices",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta("DELETE FROM people")).
					WillReturnError(&pgconn.PgError{Code: codeForeignKeyViolation})
			},
			wantErr: entity.ErrHasDependents,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, mock := begin(t)
			tt.setupMock(mock)

			err := tx.DeletePerson(context.Background(), entity.PersonSupplier, id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTx_DeleteCategoryInUse(t *testing.T) {
	tx, mock := begin(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT name FROM categories")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Sabri"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM sales WHERE qat_type")).
		WithArgs("Sabri").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := tx.DeleteCategory(context.Background(), id)
	assert.ErrorIs(t, err, entity.ErrHasDependents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTx_AdjustStock(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m sqlmock.Sqlmock)
		wantStock int64
		wantErr   error
	}

	id := uuid.New()
	cols := []string{"id", "name", "price", "currency", "stock", "created_at"}

	tests := []testCase{
		{
			name: "Decrease",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta("UPDATE categories")).
					WithArgs("Sabri", int64(-3)).
					WillReturnRows(sqlmock.NewRows(cols).AddRow(id.String(), "Sabri", "1500", "YER", int64(7), time.Now()))
			},
			wantStock: 7,
		},
		{
			name: "UnknownCategory",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta("UPDATE categories")).
					WillReturnRows(sqlmock.NewRows(cols))
			},
			wantErr: entity.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, mock := begin(t)
			tt.setupMock(mock)

			got, err := tx.AdjustStock(context.Background(), " Sabri", -3)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantStock, got.Stock)
				assert.Equal(t, entity.CurrencyYER, got.Currency)
				assert.True(t, decimal.NewFromInt(1500).Equal(got.Price))
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTx_MarkSaleReturned(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m sqlmock.Sqlmock)
		wantErr   error
	}

	id := uuid.New()

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta("UPDATE sales SET is_returned = TRUE")).
					WithArgs(id).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "AlreadyReturned",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta("UPDATE sales SET is_returned = TRUE")).
					WillReturnResult(sqlmock.NewResult(0, 0))
				m.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM sales")).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			wantErr: entity.ErrAlreadyReturned,
		},
		{
			name: "Missing",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectExec(regexp.QuoteMeta("UPDATE sales SET is_returned = TRUE")).
					WillReturnResult(sqlmock.NewResult(0, 0))
				m.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM sales")).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			wantErr: entity.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, mock := begin(t)
			tt.setupMock(mock)

			err := tx.MarkSaleReturned(context.Background(), id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTx_CreateSaleUnknownCustomer(t *testing.T) {
	tx, mock := begin(t)
	customer := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM people")).
		WithArgs(customer, "customer").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	err := tx.CreateSale(context.Background(), &entity.Sale{CustomerID: customer, QatType: "Sabri", Quantity: 1})
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTx_RollbackAfterCommit(t *testing.T) {
	tx, mock := begin(t)
	mock.ExpectCommit()

	require.NoError(t, tx.Commit())
	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Snapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	customer, supplier := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM people")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "person_type", "name", "phone", "region", "created_at"}).
			AddRow(customer.String(), "customer", "Mohammed", "", "", now).
			AddRow(supplier.String(), "supplier", "Omar", "", "", now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM categories")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "currency", "stock", "created_at"}).
			AddRow(uuid.NewString(), "Sabri", "1500", "YER", int64(10), now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM sales")).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "customer_id", "customer_name", "qat_type", "quantity", "unit_price", "total",
			"currency", "status", "date", "is_returned", "created_at",
		}).AddRow(uuid.NewString(), customer.String(), "Mohammed", "Sabri", int64(2), "500", "1000", "YER", "credit", now, false, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM purchases")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("FROM waste")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("FROM vouchers")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("FROM opening_balances")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("FROM exchange_rates")).
		WillReturnRows(sqlmock.NewRows([]string{"sar_to_yer", "omr_to_yer", "updated_at"}))
	mock.ExpectCommit()

	snap, err := New(db).Snapshot(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Customers, 1)
	require.Len(t, snap.Suppliers, 1)
	assert.Equal(t, "Omar", snap.Suppliers[0].Name)
	require.Len(t, snap.Sales, 1)
	assert.Equal(t, entity.StatusCredit, snap.Sales[0].Status)
	assert.True(t, decimal.NewFromInt(1000).Equal(snap.Sales[0].Total))
	assert.Equal(t, int64(10), snap.Categories[0].Stock)
	assert.True(t, snap.Rates.SARToYER.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_BeginLockFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WillReturnError(driver.ErrBadConn)
	mock.ExpectRollback()

	_, err = New(db).Begin(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}
