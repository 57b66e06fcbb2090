package ledgercsv_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/daftar/internal/action"
	"github.com/MrJamesThe3rd/daftar/internal/entity"
	"github.com/MrJamesThe3rd/daftar/internal/importer/ledgercsv"
)

func TestParser_Parse(t *testing.T) {
	type args struct {
		csvContent string
	}

	type testCase struct {
		name    string
		args    args
		wantLen int
		verify  func(t *testing.T, lines []action.OpeningBalance)
		wantErr bool
	}

	tests := []testCase{
		{
			name: "Arabic Signed",
			args: args{
				csvContent: "الاسم;النوع;المبلغ;العملة;ملاحظات\n" +
					"محمد;عميل;١٬٥٠٠;ريال يمني;دفتر قديم\n" +
					"عمر;مورد;-200;ريال سعودي;\n",
			},
			wantLen: 2,
			verify: func(t *testing.T, lines []action.OpeningBalance) {
				assert.Equal(t, "محمد", lines[0].PersonName)
				assert.Equal(t, entity.PersonCustomer, lines[0].PersonType)
				assert.True(t, decimal.NewFromInt(1500).Equal(lines[0].Amount))
				assert.Equal(t, entity.CurrencyYER, lines[0].Currency)
				assert.Equal(t, entity.BalanceDebit, lines[0].BalanceType)
				assert.Equal(t, "دفتر قديم", lines[0].Notes)

				assert.Equal(t, entity.PersonSupplier, lines[1].PersonType)
				assert.True(t, decimal.NewFromInt(200).Equal(lines[1].Amount))
				assert.Equal(t, entity.CurrencySAR, lines[1].Currency)
				assert.Equal(t, entity.BalanceCredit, lines[1].BalanceType)
			},
		},
		{
			name: "English Split With Preamble",
			args: args{
				csvContent: "Shop ledger,2025\n" +
					"\n" +
					"Name,Debit,Credit,Currency\n" +
					"Ali Saleh,\"1,250.50\",,OMR\n" +
					"Omar,,300,\n" +
					"Nobody,0,0,\n",
			},
			wantLen: 2,
			verify: func(t *testing.T, lines []action.OpeningBalance) {
				assert.Equal(t, "Ali Saleh", lines[0].PersonName)
				assert.True(t, decimal.RequireFromString("1250.50").Equal(lines[0].Amount))
				assert.Equal(t, entity.CurrencyOMR, lines[0].Currency)
				assert.Equal(t, entity.BalanceDebit, lines[0].BalanceType)

				assert.Equal(t, entity.BalanceCredit, lines[1].BalanceType)
				assert.Equal(t, entity.CurrencyYER, lines[1].Currency)
				assert.Equal(t, entity.PersonCustomer, lines[1].PersonType)
			},
		},
		{
			name: "Tab Separated Parentheses",
			args: args{
				csvContent: "name\ttype\tamount\n" +
					"Omar\tsupplier\t(75)\n",
			},
			wantLen: 1,
			verify: func(t *testing.T, lines []action.OpeningBalance) {
				assert.True(t, decimal.NewFromInt(75).Equal(lines[0].Amount))
				assert.Equal(t, entity.BalanceCredit, lines[0].BalanceType)
			},
		},
		{
			name:    "Empty File",
			args:    args{csvContent: ""},
			wantLen: 0,
		},
		{
			name:    "Header Only",
			args:    args{csvContent: "name,amount\n"},
			wantLen: 0,
		},
		{
			name:    "Unknown Layout",
			args:    args{csvContent: "date,description\n01-01-2026,x\n"},
			wantErr: true,
		},
		{
			name:    "Bad Amount",
			args:    args{csvContent: "name,amount\nAli,abc\n"},
			wantErr: true,
		},
		{
			name:    "Bad Currency",
			args:    args{csvContent: "name,amount,currency\nAli,10,EUR\n"},
			wantErr: true,
		},
		{
			name:    "Bad Type",
			args:    args{csvContent: "name,type,amount\nAli,partner,10\n"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ledgercsv.New().Parse(strings.NewReader(tt.args.csvContent))

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)

			if tt.verify != nil {
				tt.verify(t, got)
			}
		})
	}
}

func TestParser_RowNumberInError(t *testing.T) {
	_, err := ledgercsv.New().Parse(strings.NewReader("name,amount\nAli,10\nOmar,x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}
