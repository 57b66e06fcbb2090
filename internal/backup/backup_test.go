package backup

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

func sampleSnapshot() *entity.Snapshot {
	return &entity.Snapshot{
		Customers: []entity.Person{{ID: uuid.New(), Type: entity.PersonCustomer, Name: "Mohammed"}},
		Categories: []entity.Category{
			{ID: uuid.New(), Name: "Sabri", Price: decimal.NewFromInt(1500), Currency: entity.CurrencyYER, Stock: 10},
		},
		Rates: entity.ExchangeRates{SARToYER: decimal.NewFromInt(140)},
	}
}

func TestService_BackupToDir(t *testing.T) {
	dir := t.TempDir()

	svc := NewService(DirUploader{Dir: dir})
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }

	location, err := svc.Backup(context.Background(), sampleSnapshot())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backups", "daftar-20260301-093000.json"), location)

	f, err := os.Open(location)
	require.NoError(t, err)
	defer f.Close()

	snap, err := Read(f)
	require.NoError(t, err)
	require.Len(t, snap.Customers, 1)
	assert.Equal(t, "Mohammed", snap.Customers[0].Name)
	assert.Equal(t, int64(10), snap.Categories[0].Stock)
	assert.True(t, decimal.NewFromInt(140).Equal(snap.Rates.SARToYER))
}

func TestService_BackupNil(t *testing.T) {
	_, err := NewService(DirUploader{Dir: t.TempDir()}).Backup(context.Background(), nil)
	assert.Error(t, err)
}

func TestRead_UnsupportedVersion(t *testing.T) {
	_, err := ReadBytes([]byte(`{"version": 9, "data": {}}`))
	assert.Error(t, err)
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}

	f.input = in

	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.body = body

	return &s3.PutObjectOutput{}, nil
}

func TestS3Uploader_Upload(t *testing.T) {
	type testCase struct {
		name    string
		putErr  error
		wantErr bool
	}

	tests := []testCase{
		{name: "Success"},
		{name: "BucketRejects", putErr: errors.New("access denied"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			putter := &fakePutter{err: tt.putErr}
			u := &S3Uploader{client: putter, bucket: "ledger"}

			location, err := u.Upload(context.Background(), "backups/x.json", []byte("{}"), contentType)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "s3://ledger/backups/x.json", location)
			assert.Equal(t, "ledger", aws.ToString(putter.input.Bucket))
			assert.Equal(t, contentType, aws.ToString(putter.input.ContentType))
			assert.Equal(t, []byte("{}"), putter.body)
		})
	}
}

func TestNewS3Uploader_RequiresBucket(t *testing.T) {
	_, err := NewS3Uploader(context.Background(), S3Config{})
	assert.Error(t, err)
}
