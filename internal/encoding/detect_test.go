package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/daftar/internal/encoding"
)

const arabicHeader = "الاسم;النوع;المبلغ;العملة\nمحمد;عميل;1000;ريال يمني\n"

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	r, err := encoding.NewUTF8Reader(strings.NewReader(arabicHeader))
	require.NoError(t, err)

	assert.Equal(t, arabicHeader, readAll(t, r))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte(arabicHeader)...)

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, arabicHeader, readAll(t, r))
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(arabicHeader)
	require.NoError(t, err)

	r, err := encoding.NewUTF8Reader(strings.NewReader(encoded))
	require.NoError(t, err)

	assert.Equal(t, arabicHeader, readAll(t, r))
}

func TestNewUTF8Reader_Empty(t *testing.T) {
	r, err := encoding.NewUTF8Reader(bytes.NewReader(nil))
	require.NoError(t, err)

	assert.Empty(t, readAll(t, r))
}

func TestNewReader_Windows1256(t *testing.T) {
	encoded, err := charmap.Windows1256.NewEncoder().String(arabicHeader)
	require.NoError(t, err)

	r, err := encoding.NewReader(strings.NewReader(encoded), "CP1256")
	require.NoError(t, err)

	assert.Equal(t, arabicHeader, readAll(t, r))
}

func TestNewReader(t *testing.T) {
	type testCase struct {
		name    string
		charset string
		wantErr bool
	}

	tests := []testCase{
		{name: "UTF8", charset: "utf-8"},
		{name: "ArabicISO", charset: "ISO-8859-6"},
		{name: "Latin", charset: "windows-1252"},
		{name: "Unknown", charset: "klingon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := encoding.NewReader(strings.NewReader("abc"), tt.charset)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
		})
	}
}
