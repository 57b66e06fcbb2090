package importer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
	"github.com/MrJamesThe3rd/daftar/internal/importer"
)

func TestService_Import(t *testing.T) {
	type args struct {
		format  importer.Format
		charset string
		content func(t *testing.T) string
	}

	type testCase struct {
		name     string
		args     args
		wantLen  int
		wantName string
		wantErr  bool
	}

	arabic := "الاسم,المبلغ\nمحمد,500\n"

	tests := []testCase{
		{
			name: "DetectedUTF8",
			args: args{
				format:  importer.FormatLedgerCSV,
				content: func(*testing.T) string { return arabic },
			},
			wantLen:  1,
			wantName: "محمد",
		},
		{
			name: "ExplicitWindows1256",
			args: args{
				charset: "windows-1256",
				content: func(t *testing.T) string {
					s, err := charmap.Windows1256.NewEncoder().String(arabic)
					require.NoError(t, err)

					return s
				},
			},
			wantLen:  1,
			wantName: "محمد",
		},
		{
			name: "UnknownFormat",
			args: args{
				format:  "xlsx",
				content: func(*testing.T) string { return arabic },
			},
			wantErr: true,
		},
		{
			name: "NothingToImport",
			args: args{
				content: func(*testing.T) string { return "name,amount\n" },
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := importer.NewService().Import(tt.args.format, tt.args.charset, strings.NewReader(tt.args.content(t)))

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Len(t, got.Lines, tt.wantLen)
			assert.Equal(t, tt.wantName, got.Lines[0].PersonName)
			assert.Equal(t, entity.BalanceDebit, got.Lines[0].BalanceType)
		})
	}
}
