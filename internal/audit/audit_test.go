package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/daftar/internal/audit"
)

func TestService_Record(t *testing.T) {
	type args struct {
		category string
		detail   string
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *audit.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{category: "sale", detail: "Ali: 3 x Sabri"},
			setupMock: func(m *audit.MockRepository) {
				m.EXPECT().
					Append(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e *audit.Entry) error {
						assert.Equal(t, "sale", e.Category)
						assert.NotEmpty(t, e.ID)
						assert.False(t, e.CreatedAt.IsZero())
						return nil
					})
			},
		},
		{
			name:    "MissingCategory",
			args:    args{category: "  ", detail: "x"},
			wantErr: true,
		},
		{
			name: "RepoError",
			args: args{category: "voucher", detail: "x"},
			setupMock: func(m *audit.MockRepository) {
				m.EXPECT().
					Append(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := audit.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			err := audit.NewService(repo).Record(context.Background(), tt.args.category, tt.args.detail)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestMemoryRepository_NewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := audit.NewService(audit.NewMemoryRepository())

	require.NoError(t, svc.Record(ctx, "sale", "first"))
	require.NoError(t, svc.Record(ctx, "voucher", "second"))
	require.NoError(t, svc.Record(ctx, "waste", "third"))

	got, err := svc.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "third", got[0].Detail)
	assert.Equal(t, "second", got[1].Detail)

	all, err := svc.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
