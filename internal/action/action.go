// Package action defines the proposals the engine accepts. Each proposal is
// one struct per action name; Decode turns untrusted parser output into one
// of them.
package action

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

type Name string

const (
	NameRecordSale            Name = "recordSale"
	NameRecordPurchase        Name = "recordPurchase"
	NameRecordWaste           Name = "recordWaste"
	NameRecordReturn          Name = "recordReturn"
	NameManagePerson          Name = "managePerson"
	NameManageCategory        Name = "manageCategory"
	NameRecordVoucher         Name = "recordVoucher"
	NameRecordOpeningBalance  Name = "recordOpeningBalance"
	NameImportOpeningBalances Name = "importOpeningBalances"
	NameSystemControl         Name = "systemControl"
	NameSendMessage           Name = "sendMessage"
)

// Source is the channel a proposal arrived on.
type Source string

const (
	SourceForm   Source = "form"
	SourceText   Source = "text"
	SourceVoice  Source = "voice"
	SourceImport Source = "import"
	SourceTUI    Source = "tui"
)

func (s Source) Valid() bool {
	switch s {
	case SourceForm, SourceText, SourceVoice, SourceImport, SourceTUI:
		return true
	}

	return false
}

// Op is the operation of a managePerson or manageCategory proposal.
type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// ReturnKind selects which invoice book a return applies to.
type ReturnKind string

const (
	ReturnSale     ReturnKind = "sale"
	ReturnPurchase ReturnKind = "purchase"
)

type Command string

const (
	CommandBackup      Command = "backup"
	CommandUpdateRates Command = "update_rates"
)

type MessageType string

const (
	MessageStatement    MessageType = "statement"
	MessageDebtReminder MessageType = "debt_reminder"
	MessageThanks       MessageType = "thanks"
)

// Action is a decoded, schema-valid proposal. The set of implementations is
// closed; the executor switches over them exhaustively.
type Action interface {
	Kind() Name
	// Describe renders the proposal for a confirmation prompt.
	Describe() string
	isAction()
}

type Sale struct {
	CustomerName string               `json:"customer_name" validate:"required"`
	QatType      string               `json:"qat_type" validate:"required"`
	Quantity     int64                `json:"quantity" validate:"gt=0"`
	UnitPrice    decimal.Decimal      `json:"unit_price" validate:"gt=0"`
	Currency     entity.Currency      `json:"currency" validate:"required,oneof=YER SAR OMR"`
	Status       entity.InvoiceStatus `json:"status" validate:"required,oneof=cash credit"`
}

func (*Sale) Kind() Name { return NameRecordSale }
func (*Sale) isAction()  {}

func (a *Sale) Describe() string {
	return fmt.Sprintf("Sale to %s: %d x %s @ %s %s (%s), total %s %s",
		a.CustomerName, a.Quantity, a.QatType, a.UnitPrice, a.Currency, a.Status,
		entity.LineTotal(a.Quantity, a.UnitPrice), a.Currency)
}

type Purchase struct {
	SupplierName string               `json:"supplier_name" validate:"required"`
	QatType      string               `json:"qat_type" validate:"required"`
	Quantity     int64                `json:"quantity" validate:"gt=0"`
	UnitPrice    decimal.Decimal      `json:"unit_price" validate:"gt=0"`
	Currency     entity.Currency      `json:"currency" validate:"required,oneof=YER SAR OMR"`
	Status       entity.InvoiceStatus `json:"status" validate:"required,oneof=cash credit"`
}

func (*Purchase) Kind() Name { return NameRecordPurchase }
func (*Purchase) isAction()  {}

func (a *Purchase) Describe() string {
	return fmt.Sprintf("Purchase from %s: %d x %s @ %s %s (%s), total %s %s",
		a.SupplierName, a.Quantity, a.QatType, a.UnitPrice, a.Currency, a.Status,
		entity.LineTotal(a.Quantity, a.UnitPrice), a.Currency)
}

type Waste struct {
	QatType  string `json:"qat_type" validate:"required"`
	Quantity int64  `json:"quantity" validate:"gt=0"`
	Notes    string `json:"notes"`
}

func (*Waste) Kind() Name { return NameRecordWaste }
func (*Waste) isAction()  {}

func (a *Waste) Describe() string {
	return fmt.Sprintf("Waste: %d x %s", a.Quantity, a.QatType)
}

// Return marks the most recent open invoice of a counterpart as returned.
// QatType narrows sale returns by item when set.
type Return struct {
	Operation  ReturnKind `json:"operation_type" validate:"required,oneof=sale purchase"`
	PersonName string     `json:"person_name" validate:"required"`
	QatType    string     `json:"qat_type"`
}

func (*Return) Kind() Name { return NameRecordReturn }
func (*Return) isAction()  {}

func (a *Return) Describe() string {
	if a.QatType != "" {
		return fmt.Sprintf("Return %s invoice of %s (%s)", a.Operation, a.PersonName, a.QatType)
	}

	return fmt.Sprintf("Return %s invoice of %s", a.Operation, a.PersonName)
}

// Person adds, updates or deletes a customer or supplier. NewName renames
// on update.
type Person struct {
	Op      Op                `json:"action" validate:"required,oneof=add update delete"`
	Type    entity.PersonType `json:"type" validate:"required,oneof=customer supplier"`
	Name    string            `json:"name" validate:"required"`
	NewName string            `json:"new_name"`
	Phone   string            `json:"phone"`
	Region  string            `json:"address_region"`
}

func (*Person) Kind() Name { return NameManagePerson }
func (*Person) isAction()  {}

func (a *Person) Describe() string {
	if a.Op == OpUpdate && a.NewName != "" {
		return fmt.Sprintf("Update %s %s (rename to %s)", a.Type, a.Name, a.NewName)
	}

	return fmt.Sprintf("%s %s %s", opVerb(a.Op), a.Type, a.Name)
}

type Category struct {
	Op       Op              `json:"action" validate:"required,oneof=add update delete"`
	Name     string          `json:"name" validate:"required"`
	NewName  string          `json:"new_name"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
	Currency entity.Currency `json:"currency" validate:"omitempty,oneof=YER SAR OMR"`
	Stock    int64           `json:"stock" validate:"gte=0"`
}

func (*Category) Kind() Name { return NameManageCategory }
func (*Category) isAction()  {}

func (a *Category) Describe() string {
	if a.Op == OpDelete {
		return fmt.Sprintf("Delete category %s", a.Name)
	}

	return fmt.Sprintf("%s category %s at %s %s", opVerb(a.Op), a.Name, a.Price, a.Currency)
}

type Voucher struct {
	Type       entity.VoucherType `json:"type" validate:"required,oneof=receipt payment"`
	PersonName string             `json:"person_name" validate:"required"`
	Amount     decimal.Decimal    `json:"amount" validate:"gt=0"`
	Currency   entity.Currency    `json:"currency" validate:"required,oneof=YER SAR OMR"`
	Notes      string             `json:"notes"`
}

func (*Voucher) Kind() Name { return NameRecordVoucher }
func (*Voucher) isAction()  {}

func (a *Voucher) Describe() string {
	if a.Type == entity.VoucherPayment {
		return fmt.Sprintf("Payment of %s %s to %s", a.Amount, a.Currency, a.PersonName)
	}

	return fmt.Sprintf("Receipt of %s %s from %s", a.Amount, a.Currency, a.PersonName)
}

type OpeningBalance struct {
	PersonType  entity.PersonType  `json:"person_type" validate:"required,oneof=customer supplier"`
	PersonName  string             `json:"person_name" validate:"required"`
	Amount      decimal.Decimal    `json:"amount" validate:"gt=0"`
	Currency    entity.Currency    `json:"currency" validate:"required,oneof=YER SAR OMR"`
	BalanceType entity.BalanceType `json:"balance_type" validate:"required,oneof=debit credit"`
	Notes       string             `json:"notes"`
}

func (*OpeningBalance) Kind() Name { return NameRecordOpeningBalance }
func (*OpeningBalance) isAction()  {}

func (a *OpeningBalance) Describe() string {
	return fmt.Sprintf("Opening balance for %s %s: %s %s %s",
		a.PersonType, a.PersonName, a.Amount, a.Currency, a.BalanceType)
}

// ImportOpeningBalances records a batch of opening balances in one unit.
type ImportOpeningBalances struct {
	Lines []OpeningBalance `json:"lines" validate:"required,min=1,dive"`
}

func (*ImportOpeningBalances) Kind() Name { return NameImportOpeningBalances }
func (*ImportOpeningBalances) isAction()  {}

func (a *ImportOpeningBalances) Describe() string {
	return fmt.Sprintf("Import %d opening balances", len(a.Lines))
}

// SystemControl runs a maintenance command. Zero rates keep the current value.
type SystemControl struct {
	Command Command         `json:"command" validate:"required,oneof=backup update_rates"`
	SARRate decimal.Decimal `json:"sar_rate" validate:"gte=0"`
	OMRRate decimal.Decimal `json:"omr_rate" validate:"gte=0"`
}

func (*SystemControl) Kind() Name { return NameSystemControl }
func (*SystemControl) isAction()  {}

func (a *SystemControl) Describe() string {
	if a.Command == CommandUpdateRates {
		return fmt.Sprintf("Update exchange rates (SAR %s, OMR %s)", a.SARRate, a.OMRRate)
	}

	return "Create cloud backup"
}

type SendMessage struct {
	PersonName  string      `json:"person_name" validate:"required"`
	MessageType MessageType `json:"message_type" validate:"required,oneof=statement debt_reminder thanks"`
}

func (*SendMessage) Kind() Name { return NameSendMessage }
func (*SendMessage) isAction()  {}

func (a *SendMessage) Describe() string {
	return fmt.Sprintf("Send %s message to %s", a.MessageType, a.PersonName)
}

func opVerb(op Op) string {
	switch op {
	case OpAdd:
		return "Add"
	case OpUpdate:
		return "Update"
	case OpDelete:
		return "Delete"
	}

	return string(op)
}

// Ref names the person a proposal is about.
type Ref struct {
	// Type is empty when the name may match either customers or suppliers.
	Type entity.PersonType
	Name string
}

// Counterpart reports the person a proposal must resolve before it can run.
// Batch imports and proposals that do not target an existing person report
// false.
func Counterpart(a Action) (Ref, bool) {
	switch a := a.(type) {
	case *Sale:
		return Ref{Type: entity.PersonCustomer, Name: a.CustomerName}, true
	case *Purchase:
		return Ref{Type: entity.PersonSupplier, Name: a.SupplierName}, true
	case *Return:
		if a.Operation == ReturnPurchase {
			return Ref{Type: entity.PersonSupplier, Name: a.PersonName}, true
		}

		return Ref{Type: entity.PersonCustomer, Name: a.PersonName}, true
	case *Person:
		if a.Op == OpAdd {
			return Ref{}, false
		}

		return Ref{Type: a.Type, Name: a.Name}, true
	case *Voucher:
		return Ref{Type: a.Type.PersonType(), Name: a.PersonName}, true
	case *OpeningBalance:
		return Ref{Type: a.PersonType, Name: a.PersonName}, true
	case *SendMessage:
		return Ref{Name: a.PersonName}, true
	}

	return Ref{}, false
}
