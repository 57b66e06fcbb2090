package action

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrInvalidArgs   = errors.New("invalid arguments")
)

// FieldError describes one rejected argument.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ArgumentError lists every argument that failed schema validation.
type ArgumentError struct {
	Action Name
	Fields []FieldError
}

func (e *ArgumentError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}

	return fmt.Sprintf("%s: %s", e.Action, strings.Join(parts, "; "))
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgs
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}

		return nil
	}, decimal.Decimal{})

	return v
}

// Parser output often carries the Arabic enum labels the voice prompt uses.
// They are mapped onto the canonical values before validation.
var enumKeys = map[string]bool{
	"status":         true,
	"operation_type": true,
	"action":         true,
	"type":           true,
	"person_type":    true,
	"balance_type":   true,
	"command":        true,
	"message_type":   true,
	"currency":       true,
}

var synonyms = map[string]string{
	"نقدي":        string(entity.StatusCash),
	"آجل":         string(entity.StatusCredit),
	"بيع":         string(ReturnSale),
	"شراء":        string(ReturnPurchase),
	"إضافة":       string(OpAdd),
	"تعديل":       string(OpUpdate),
	"حذف":         string(OpDelete),
	"عميل":        string(entity.PersonCustomer),
	"مورد":        string(entity.PersonSupplier),
	"قبض":         string(entity.VoucherReceipt),
	"دفع":         string(entity.VoucherPayment),
	"مدين":        string(entity.BalanceDebit),
	"دائن":        string(entity.BalanceCredit),
	"نسخ_احتياطي": string(CommandBackup),
	"تحديث_الصرف": string(CommandUpdateRates),
	"كشف_حساب":    string(MessageStatement),
	"تنبيه_ديون":  string(MessageDebtReminder),
	"شكر":         string(MessageThanks),
	"ريال يمني":   string(entity.CurrencyYER),
	"ريال سعودي":  string(entity.CurrencySAR),
	"ريال عماني":  string(entity.CurrencyOMR),
}

// Decode validates untrusted arguments for the named action.
func Decode(name Name, args json.RawMessage) (Action, error) {
	a, err := empty(name)
	if err != nil {
		return nil, err
	}

	normalized, err := normalize(args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", name, ErrInvalidArgs, err)
	}

	dec := json.NewDecoder(bytes.NewReader(normalized))
	if err := dec.Decode(a); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", name, ErrInvalidArgs, err)
	}

	applyDefaults(a)

	if err := Validate(a); err != nil {
		return nil, err
	}

	return a, nil
}

// Validate checks a proposal built in code, such as an import batch, against
// the same rules Decode applies.
func Validate(a Action) error {
	err := validate.Struct(a)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%s: %w: %w", a.Kind(), ErrInvalidArgs, err)
	}

	out := &ArgumentError{Action: a.Kind()}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}

	return out
}

func empty(name Name) (Action, error) {
	switch name {
	case NameRecordSale:
		return &Sale{}, nil
	case NameRecordPurchase:
		return &Purchase{}, nil
	case NameRecordWaste:
		return &Waste{}, nil
	case NameRecordReturn:
		return &Return{}, nil
	case NameManagePerson:
		return &Person{}, nil
	case NameManageCategory:
		return &Category{}, nil
	case NameRecordVoucher:
		return &Voucher{}, nil
	case NameRecordOpeningBalance:
		return &OpeningBalance{}, nil
	case NameImportOpeningBalances:
		return &ImportOpeningBalances{}, nil
	case NameSystemControl:
		return &SystemControl{}, nil
	case NameSendMessage:
		return &SendMessage{}, nil
	}

	return nil, fmt.Errorf("%q: %w", name, ErrUnknownAction)
}

func normalize(args json.RawMessage) ([]byte, error) {
	if len(bytes.TrimSpace(args)) == 0 {
		return []byte("{}"), nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(args, &fields); err != nil {
		return nil, err
	}

	for key, raw := range fields {
		if key == "lines" {
			lines, err := normalizeLines(raw)
			if err != nil {
				return nil, err
			}

			fields[key] = lines

			continue
		}

		var s string
		if json.Unmarshal(raw, &s) != nil {
			continue
		}

		s = strings.TrimSpace(s)
		if enumKeys[key] {
			s = canonicalEnum(key, s)
		}

		encoded, err := json.Marshal(s)
		if err != nil {
			return nil, err
		}

		fields[key] = encoded
	}

	return json.Marshal(fields)
}

func normalizeLines(raw json.RawMessage) (json.RawMessage, error) {
	var lines []json.RawMessage
	if json.Unmarshal(raw, &lines) != nil {
		return raw, nil
	}

	for i, line := range lines {
		normalized, err := normalize(line)
		if err != nil {
			return nil, fmt.Errorf("lines[%d]: %w", i, err)
		}

		lines[i] = normalized
	}

	return json.Marshal(lines)
}

func canonicalEnum(key, s string) string {
	if key == "currency" {
		return strings.ToUpper(Canonical(s))
	}

	return Canonical(s)
}

// Canonical maps an Arabic enum label onto its canonical value and lowercases
// anything else.
func Canonical(s string) string {
	s = strings.TrimSpace(s)
	if canonical, ok := synonyms[s]; ok {
		return canonical
	}

	return strings.ToLower(s)
}

func applyDefaults(a Action) {
	switch a := a.(type) {
	case *Sale:
		a.Currency = defaultCurrency(a.Currency)
	case *Purchase:
		a.Currency = defaultCurrency(a.Currency)
	case *Voucher:
		a.Currency = defaultCurrency(a.Currency)
	case *OpeningBalance:
		a.Currency = defaultCurrency(a.Currency)
	case *Category:
		if a.Op == OpAdd {
			a.Currency = defaultCurrency(a.Currency)
		}
	case *ImportOpeningBalances:
		for i := range a.Lines {
			a.Lines[i].Currency = defaultCurrency(a.Lines[i].Currency)
		}
	}
}

func defaultCurrency(c entity.Currency) entity.Currency {
	if c == "" {
		return entity.CurrencyYER
	}

	return c
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}

	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		return "needs at least " + fe.Param() + " entries"
	default:
		return "is invalid"
	}
}
