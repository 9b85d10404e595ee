package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "transfer"
)

// Transaction is a single money movement, always routed through an envelope.
type Transaction struct {
	ID          string          `json:"id" gorm:"primaryKey"`
	Date        time.Time       `json:"date" gorm:"index;index:idx_transactions_date_category,priority:1;index:idx_transactions_date_envelope,priority:1;index:idx_transactions_envelope_date,priority:2;index:idx_transactions_category_date,priority:2;index:idx_transactions_type_date,priority:2"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8);index"` // Negative for expenses, positive for income
	Description string          `json:"description"`
	Merchant    string          `json:"merchant"`
	ReceiptURL  string          `json:"receiptUrl"`
	Notes       string          `json:"notes"`
	Category    string          `json:"category" gorm:"index;index:idx_transactions_date_category,priority:2;index:idx_transactions_category_date,priority:1"`
	Type        TransactionType `json:"type" gorm:"index;index:idx_transactions_type_date,priority:1"`
	EnvelopeID  string          `json:"envelopeId" gorm:"index;index:idx_transactions_date_envelope,priority:2;index:idx_transactions_envelope_date,priority:1"`
	BillID      string          `json:"billId,omitempty"`
	PaycheckID  string          `json:"paycheckId,omitempty" gorm:"index"`
	Reconciled  bool            `json:"reconciled"`

	IsSplit             bool                `json:"isSplit"`
	SplitInto           []string            `json:"splitInto,omitempty" gorm:"serializer:json"` // IDs of the transactions this one was split into
	ParentTransactionID string              `json:"parentTransactionId,omitempty" gorm:"index"`
	SplitIndex          int                 `json:"splitIndex,omitempty"`
	SplitTotal          int                 `json:"splitTotal,omitempty"`
	OriginalAmount      decimal.NullDecimal `json:"originalAmount" gorm:"type:DECIMAL(20,8)"`
	Metadata            TransactionMetadata `json:"metadata" gorm:"serializer:json"`

	UpdatedAt *time.Time `json:"updatedAt,omitempty" gorm:"autoUpdateTime:false"` // Set by edits only
	Timestamps
}

// TransactionMetadata holds optional data attached by importers and the splitter.
type TransactionMetadata struct {
	Items     []LineItem      `json:"items,omitempty"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	SplitData *SplitData      `json:"splitData,omitempty"`
}

// LineItem is one item of an itemized purchase.
type LineItem struct {
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Quantity   int             `json:"quantity"`
	Category   string          `json:"category"`
}

// SplitData links a split transaction to the transaction it was split from.
type SplitData struct {
	SplitIndex            int       `json:"splitIndex"`
	TotalSplits           int       `json:"totalSplits"`
	OriginalTransactionID string    `json:"originalTransactionId"`
	IsOriginalItem        bool      `json:"isOriginalItem"`
	OriginalItem          *LineItem `json:"originalItem,omitempty"`
}

// IsSplitParent reports whether the transaction has been replaced by split children.
func (t Transaction) IsSplitParent() bool {
	return len(t.SplitInto) > 0
}

// BeforeSave
//   - trims whitespace from string fields
//   - defaults the date to now and stores it in UTC
func (t *Transaction) BeforeSave(_ *gorm.DB) error {
	t.ID = strings.TrimSpace(t.ID)
	t.EnvelopeID = strings.TrimSpace(t.EnvelopeID)
	t.Description = strings.TrimSpace(t.Description)
	t.Merchant = strings.TrimSpace(t.Merchant)
	t.ReceiptURL = strings.TrimSpace(t.ReceiptURL)
	t.Notes = strings.TrimSpace(t.Notes)
	t.Category = strings.TrimSpace(t.Category)

	if t.Date.IsZero() {
		t.Date = time.Now().In(time.UTC)
	} else {
		t.Date = t.Date.In(time.UTC)
	}

	return nil
}

// AfterFind enforces UTC for all times read from the database.
func (t *Transaction) AfterFind(_ *gorm.DB) error {
	t.Timestamps.UTC()
	t.Date = t.Date.In(time.UTC)

	if t.UpdatedAt != nil {
		u := t.UpdatedAt.In(time.UTC)
		t.UpdatedAt = &u
	}

	return nil
}

// BeforeCreate assigns an ID when none is set.
func (t *Transaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = NewID()
	}
	return nil
}
