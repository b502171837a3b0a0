// Package payment wraps the hosted card-capture widget. The widget hands the
// front end a payment-method token; a well-formed token is taken as a
// successful payment and no server-side charge is made.
package payment

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidToken = errors.New("invalid payment method token")

var tokenBody = regexp.MustCompile(`^[A-Za-z0-9_]{8,}$`)

type Result struct {
	Token  string          `json:"token"`
	Amount decimal.Decimal `json:"amount"`
	Status string          `json:"status"`
}

type Processor interface {
	Confirm(ctx context.Context, token string, amount decimal.Decimal) (*Result, error)
}

// TokenProcessor accepts tokens carrying the configured prefix.
type TokenProcessor struct {
	prefix string
}

func NewTokenProcessor(prefix string) *TokenProcessor {
	return &TokenProcessor{prefix: prefix}
}

func (p *TokenProcessor) Confirm(ctx context.Context, token string, amount decimal.Decimal) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, ok := strings.CutPrefix(token, p.prefix)
	if !ok || !tokenBody.MatchString(body) {
		return nil, ErrInvalidToken
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("payment amount must be positive, got %s", amount)
	}
	return &Result{Token: token, Amount: amount, Status: "succeeded"}, nil
}
