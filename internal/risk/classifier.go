// Package risk assigns payment risk tiers from the extracted invoice total.
//
// Classification is a pure local computation: no model call, no config read,
// no network. The only input is the total amount.
package risk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alamsCode500/Invoice-AI-Powered-Document-Orchestrator/internal/models"
)

// Tier is the payment risk band assigned to an invoice.
type Tier string

const (
	TierLow    Tier = "LOW"
	TierMedium Tier = "MEDIUM"
	TierHigh   Tier = "HIGH"
)

// ErrMissingAmount is returned when the record carries no usable total
// amount. Callers must not substitute a default tier.
var ErrMissingAmount = errors.New("total amount is missing or not a usable number")

// Thresholds defines the tier boundaries in invoice currency units.
// HIGH is strictly above HighAbove; MEDIUM runs from MediumFrom through
// HighAbove, both ends inclusive; LOW is everything below MediumFrom.
type Thresholds struct {
	HighAbove  decimal.Decimal
	MediumFrom decimal.Decimal
}

// DefaultThresholds returns the standard boundaries: HIGH above 50,000,
// MEDIUM from 5,000 through 50,000, LOW below 5,000.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighAbove:  decimal.NewFromInt(50000),
		MediumFrom: decimal.NewFromInt(5000),
	}
}

// Validate ensures the boundaries are positive and ordered.
func (t Thresholds) Validate() error {
	if t.MediumFrom.Sign() <= 0 {
		return fmt.Errorf("MediumFrom must be positive, got %s", t.MediumFrom)
	}
	if t.HighAbove.LessThanOrEqual(t.MediumFrom) {
		return fmt.Errorf("HighAbove must be greater than MediumFrom (high: %s, medium: %s)", t.HighAbove, t.MediumFrom)
	}
	return nil
}

// Classifier assigns risk tiers to extracted invoice records.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a classifier with the given boundaries.
func NewClassifier(thresholds Thresholds) *Classifier {
	return &Classifier{thresholds: thresholds}
}

// ClassifyRecord reads the total amount off an extracted record and assigns
// a tier. A record without a total amount fails with ErrMissingAmount.
func (c *Classifier) ClassifyRecord(record *models.InvoiceRecord) (Tier, error) {
	if record == nil || record.TotalAmount == nil {
		return "", ErrMissingAmount
	}
	return c.Classify(record.TotalAmount.Value)
}

// Classify parses an amount string and assigns a tier. Empty, non-numeric,
// and negative values all fail with ErrMissingAmount.
func (c *Classifier) Classify(amount string) (Tier, error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return "", ErrMissingAmount
	}

	value, err := decimal.NewFromString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMissingAmount, amount)
	}
	if value.Sign() < 0 {
		return "", fmt.Errorf("%w: negative amount %s", ErrMissingAmount, value)
	}

	return c.ClassifyAmount(value), nil
}

// ClassifyAmount assigns a tier to a non-negative amount. Comparisons are
// exact decimal arithmetic, never floating point.
func (c *Classifier) ClassifyAmount(amount decimal.Decimal) Tier {
	switch {
	case amount.GreaterThan(c.thresholds.HighAbove):
		return TierHigh
	case amount.GreaterThanOrEqual(c.thresholds.MediumFrom):
		return TierMedium
	default:
		return TierLow
	}
}
