package store_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/daftar/internal/alias"
	"github.com/MrJamesThe3rd/daftar/internal/alias/store"
	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

func TestStore_FindMatch(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name    string
		setup   func(m sqlmock.Sqlmock)
		want    uuid.UUID
		wantErr bool
	}

	tests := []testCase{
		{
			name: "Found",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta("SELECT person_id")).
					WithArgs("ali", "customer").
					WillReturnRows(sqlmock.NewRows([]string{"person_id"}).AddRow(id.String()))
			},
			want: id,
		},
		{
			name: "NoRows",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta("SELECT person_id")).
					WithArgs("ali", "customer").
					WillReturnRows(sqlmock.NewRows([]string{"person_id"}))
			},
			want: uuid.Nil,
		},
		{
			name: "QueryError",
			setup: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta("SELECT person_id")).
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.setup(mock)

			got, err := store.New(db).FindMatch(context.Background(), entity.PersonCustomer, "ali")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_CreateMapping(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO name_aliases")).
		WithArgs("abu ali", "supplier", id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = store.New(db).CreateMapping(context.Background(), alias.Mapping{
		Fragment:   "abu ali",
		PersonType: entity.PersonSupplier,
		PersonID:   id,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
