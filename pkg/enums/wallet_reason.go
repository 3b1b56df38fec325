package enums

import "fmt"

// WalletReason maps to the wallet_reason_enum enum in Postgres.
type WalletReason string

const (
	WalletReasonPlatformFee WalletReason = "platform_fee"
	WalletReasonSettlement  WalletReason = "settlement"
	WalletReasonAdjustment  WalletReason = "adjustment"
)

var validWalletReasons = []WalletReason{
	WalletReasonPlatformFee,
	WalletReasonSettlement,
	WalletReasonAdjustment,
}

// IsValid reports whether the value matches the canonical wallet reason enum.
func (r WalletReason) IsValid() bool {
	for _, candidate := range validWalletReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseWalletReason converts raw input into WalletReason.
func ParseWalletReason(value string) (WalletReason, error) {
	for _, candidate := range validWalletReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet reason %q", value)
}
