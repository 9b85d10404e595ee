// Package split decomposes one transaction into several allocations.
//
// All functions work on in-memory allocations and return new slices. Nothing
// is persisted until the allocations are converted with Prepare and committed.
package split

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/violet-vault/backend/internal/models"
	"golang.org/x/text/cases"
)

// Epsilon is the tolerance for a balanced split.
var Epsilon = decimal.New(1, -2)

// Allocation is one part of a split that is being edited.
type Allocation struct {
	ID             string           `json:"id" example:"0190c1d4-5e92-7268-b114-297faad6cdce"`
	Description    string           `json:"description" example:"Cheese"`
	Amount         decimal.Decimal  `json:"amount" example:"12.99"` // Always positive, the sign of the original transaction is applied by Prepare
	Category       string           `json:"category" example:"Groceries"`
	EnvelopeID     string           `json:"envelopeId" example:"0190c1d4-5e92-7268-b114-297faad6cdce"`
	IsOriginalItem bool             `json:"isOriginalItem" example:"false"`
	OriginalItem   *models.LineItem `json:"originalItem,omitempty"`
}

var fold = cases.Fold()

// FindEnvelopeForCategory returns the first envelope whose name or category
// matches the category name, ignoring case.
func FindEnvelopeForCategory(envelopes []models.Envelope, category string) (models.Envelope, bool) {
	if strings.TrimSpace(category) == "" {
		return models.Envelope{}, false
	}

	folded := fold.String(category)
	for _, e := range envelopes {
		if fold.String(e.Name) == folded || (e.Category != "" && fold.String(e.Category) == folded) {
			return e, true
		}
	}

	return models.Envelope{}, false
}

func envelopeIDFor(envelopes []models.Envelope, category string) string {
	e, ok := FindEnvelopeForCategory(envelopes, category)
	if !ok {
		return ""
	}
	return e.ID
}

// Initialize seeds the allocations for a transaction.
//
// Itemized transactions with at least two items get one allocation per item
// plus one each for shipping and tax. All other transactions get a single
// allocation for the full amount.
func Initialize(t models.Transaction, envelopes []models.Envelope) []Allocation {
	items := t.Metadata.Items
	if len(items) < 2 {
		description := t.Description
		if description == "" {
			description = "Transaction Split"
		}

		return []Allocation{{
			ID:          models.NewID(),
			Description: description,
			Amount:      t.Amount.Abs(),
			Category:    t.Category,
			EnvelopeID:  t.EnvelopeID,
		}}
	}

	log.Debug().Str("source", "split").Str("transaction", t.ID).Int("items", len(items)).Msg("initializing splits from itemized transaction")

	splits := make([]Allocation, 0, len(items)+2)
	for i, item := range items {

		description := item.Name
		if description == "" {
			description = fmt.Sprintf("Item %d", i+1)
		}

		amount := item.TotalPrice
		if amount.IsZero() {
			amount = item.Price
		}

		category := item.Category
		if category == "" {
			category = t.Category
		}

		splits = append(splits, Allocation{
			ID:             models.NewID(),
			Description:    description,
			Amount:         amount.Abs(),
			Category:       category,
			EnvelopeID:     envelopeIDFor(envelopes, category),
			IsOriginalItem: true,
			OriginalItem:   &item,
		})
	}

	if t.Metadata.Shipping.IsPositive() {
		splits = append(splits, Allocation{
			ID:          models.NewID(),
			Description: "Shipping & Handling",
			Amount:      t.Metadata.Shipping,
			Category:    "Shipping",
		})
	}

	if t.Metadata.Tax.IsPositive() {
		splits = append(splits, Allocation{
			ID:          models.NewID(),
			Description: "Sales Tax",
			Amount:      t.Metadata.Tax,
			Category:    "Tax",
		})
	}

	return splits
}

// Totals compares the allocated amount with the original amount.
type Totals struct {
	Original         decimal.Decimal `json:"original"`
	Allocated        decimal.Decimal `json:"allocated"`
	Remaining        decimal.Decimal `json:"remaining"`
	IsValid          bool            `json:"isValid"`
	IsOverAllocated  bool            `json:"isOverAllocated"`
	IsUnderAllocated bool            `json:"isUnderAllocated"`
}

func allocated(splits []Allocation) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range splits {
		sum = sum.Add(s.Amount)
	}
	return sum
}

// CalculateTotals computes how much of the transaction's amount is allocated.
func CalculateTotals(t models.Transaction, splits []Allocation) Totals {
	original := t.Amount.Abs()
	sum := allocated(splits)
	remaining := original.Sub(sum)

	return Totals{
		Original:         original,
		Allocated:        sum,
		Remaining:        remaining,
		IsValid:          remaining.Abs().LessThan(Epsilon),
		IsOverAllocated:  remaining.LessThan(Epsilon.Neg()),
		IsUnderAllocated: remaining.GreaterThan(Epsilon),
	}
}

// Validate returns a human readable message for every problem of the
// allocations. It returns an empty list if the allocations can be committed.
func Validate(splits []Allocation, t models.Transaction) []string {
	errs := []string{}

	for i, s := range splits {
		if strings.TrimSpace(s.Description) == "" {
			errs = append(errs, fmt.Sprintf("Split %d: Description is required", i+1))
		}
		if strings.TrimSpace(s.Category) == "" {
			errs = append(errs, fmt.Sprintf("Split %d: Category is required", i+1))
		}
		if !s.Amount.IsPositive() {
			errs = append(errs, fmt.Sprintf("Split %d: Amount must be greater than 0", i+1))
		}
	}

	totals := CalculateTotals(t, splits)
	if !totals.IsValid {
		if totals.Remaining.IsNegative() {
			errs = append(errs, fmt.Sprintf("Total splits (%s) exceed original amount (%s)", totals.Allocated.StringFixed(2), totals.Original.StringFixed(2)))
		} else {
			errs = append(errs, fmt.Sprintf("Total splits (%s) are less than original amount (%s)", totals.Allocated.StringFixed(2), totals.Original.StringFixed(2)))
		}
	}

	return errs
}

// AutoBalance distributes the unallocated remainder equally across all
// allocations. The last allocation absorbs any rounding residual.
func AutoBalance(splits []Allocation, t models.Transaction) []Allocation {
	out := clone(splits)

	totals := CalculateTotals(t, splits)
	if totals.IsValid || len(out) == 0 {
		return out
	}

	adjustment := totals.Remaining.Div(decimal.NewFromInt(int64(len(out))))

	log.Debug().Str("source", "split").Str("difference", totals.Remaining.String()).Str("adjustment", adjustment.String()).Int("count", len(out)).Msg("auto-balancing splits")

	for i := range out {
		out[i].Amount = out[i].Amount.Add(adjustment).Round(2)
	}

	residual := totals.Original.Sub(allocated(out))
	last := len(out) - 1
	out[last].Amount = out[last].Amount.Add(residual)

	return out
}

// Evenly sets all allocations to the same amount. The last allocation
// absorbs the rounding remainder.
func Evenly(splits []Allocation, t models.Transaction) []Allocation {
	out := clone(splits)
	if len(out) == 0 {
		return out
	}

	original := t.Amount.Abs()
	count := int64(len(out))
	perSplit := original.Div(decimal.NewFromInt(count)).Round(2)

	for i := range out {
		out[i].Amount = perSplit
	}
	out[count-1].Amount = original.Sub(perSplit.Mul(decimal.NewFromInt(count - 1))).Round(2)

	return out
}

// Add appends an allocation for the unallocated remainder.
//
// Description, category and envelope are taken from defaults. The category
// defaults to the transaction's category.
func Add(splits []Allocation, t models.Transaction, defaults Allocation) []Allocation {
	remaining := t.Amount.Abs().Sub(allocated(splits))

	s := defaults
	if s.ID == "" {
		s.ID = models.NewID()
	}
	if s.Category == "" {
		s.Category = t.Category
	}
	if s.Amount.IsZero() {
		s.Amount = decimal.Max(decimal.Zero, remaining).Round(2)
	}

	return append(clone(splits), s)
}

// Remove removes the allocation with the given ID. The last remaining
// allocation cannot be removed.
func Remove(splits []Allocation, id string) []Allocation {
	if len(splits) <= 1 {
		log.Warn().Str("source", "split").Str("split", id).Msg("cannot remove last split allocation")
		return clone(splits)
	}

	out := make([]Allocation, 0, len(splits))
	for _, s := range splits {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

// Update replaces the allocation with the same ID.
func Update(splits []Allocation, updated Allocation) []Allocation {
	out := clone(splits)
	for i := range out {
		if out[i].ID == updated.ID {
			out[i] = updated
		}
	}
	return out
}

// SetCategory changes the category of an allocation and routes it to the
// envelope matching the new category. If no envelope matches, the
// allocation keeps its envelope.
func SetCategory(splits []Allocation, id, category string, envelopes []models.Envelope) []Allocation {
	out := clone(splits)
	for i := range out {
		if out[i].ID != id {
			continue
		}

		out[i].Category = category
		if e, ok := FindEnvelopeForCategory(envelopes, category); ok {
			out[i].EnvelopeID = e.ID
		}
	}
	return out
}

// ChildID is the ID of the n-th transaction a transaction is split into.
func ChildID(parentID string, index int) string {
	return fmt.Sprintf("%s_split_%d", parentID, index)
}

// Prepare converts allocations into transactions. Each transaction carries the
// sign of the original transaction and references it as its parent.
func Prepare(splits []Allocation, original models.Transaction) []models.Transaction {
	transactions := make([]models.Transaction, 0, len(splits))

	for i, s := range splits {
		amount := s.Amount.Abs()
		if original.Amount.IsNegative() {
			amount = amount.Neg()
		}

		metadata := models.TransactionMetadata{
			Items:    append([]models.LineItem(nil), original.Metadata.Items...),
			Shipping: original.Metadata.Shipping,
			Tax:      original.Metadata.Tax,
			SplitData: &models.SplitData{
				SplitIndex:            i,
				TotalSplits:           len(splits),
				OriginalTransactionID: original.ID,
				IsOriginalItem:        s.IsOriginalItem,
				OriginalItem:          s.OriginalItem,
			},
		}

		transactions = append(transactions, models.Transaction{
			ID:                  ChildID(original.ID, i),
			ParentTransactionID: original.ID,
			Date:                original.Date,
			Amount:              amount,
			Description:         s.Description,
			Merchant:            original.Merchant,
			Category:            s.Category,
			Type:                original.Type,
			EnvelopeID:          s.EnvelopeID,
			IsSplit:             true,
			SplitIndex:          i,
			SplitTotal:          len(splits),
			OriginalAmount:      decimal.NewNullDecimal(original.Amount),
			Metadata:            metadata,
		})
	}

	return transactions
}

// Summary aggregates totals and validation of the allocations.
type Summary struct {
	TotalSplits      int             `json:"totalSplits"`
	OriginalAmount   decimal.Decimal `json:"originalAmount"`
	AllocatedAmount  decimal.Decimal `json:"allocatedAmount"`
	RemainingAmount  decimal.Decimal `json:"remainingAmount"`
	IsValid          bool            `json:"isValid"`
	IsBalanced       bool            `json:"isBalanced"`
	ValidationErrors []string        `json:"validationErrors"`
	CanSubmit        bool            `json:"canSubmit"`
}

// Summarize returns the summary for the allocations. CanSubmit is true
// only if the allocations are valid, balanced and not empty.
func Summarize(splits []Allocation, t models.Transaction) Summary {
	totals := CalculateTotals(t, splits)
	errs := Validate(splits, t)

	return Summary{
		TotalSplits:      len(splits),
		OriginalAmount:   totals.Original,
		AllocatedAmount:  totals.Allocated,
		RemainingAmount:  totals.Remaining,
		IsValid:          len(errs) == 0 && totals.IsValid,
		IsBalanced:       totals.IsValid,
		ValidationErrors: errs,
		CanSubmit:        len(errs) == 0 && totals.IsValid && len(splits) > 0,
	}
}

func clone(splits []Allocation) []Allocation {
	out := make([]Allocation, len(splits))
	copy(out, splits)
	return out
}
