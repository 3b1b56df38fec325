package types

import "github.com/shopspring/decimal"

// PlatformPolicy carries the tunable business knobs the assignment workflow
// needs. It is threaded explicitly into each call instead of living in global
// state so the effective values are visible at every decision point.
type PlatformPolicy struct {
	// FeePercent is the platform commission charged on the agreed price.
	FeePercent decimal.Decimal
	// DepositPercent is the share of the agreed price collected up front.
	DepositPercent decimal.Decimal
	// DebtLimit is the maximum negative wallet balance a provider may carry
	// before new assignments are blocked. Zero disables the check.
	DebtLimit decimal.Decimal
}

// DebtLimitEnabled reports whether assignments should consult the wallet.
func (p PlatformPolicy) DebtLimitEnabled() bool {
	return p.DebtLimit.IsPositive()
}
