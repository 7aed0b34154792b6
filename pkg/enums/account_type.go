package enums

import "fmt"

// AccountType distinguishes marketplace roles.
type AccountType string

const (
	AccountTypeSeller AccountType = "seller"
	AccountTypeBuyer  AccountType = "buyer"
)

var validAccountTypes = []AccountType{
	AccountTypeSeller,
	AccountTypeBuyer,
}

// String implements fmt.Stringer.
func (a AccountType) String() string {
	return string(a)
}

// IsValid reports whether the value is known.
func (a AccountType) IsValid() bool {
	for _, candidate := range validAccountTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAccountType converts raw input into an AccountType.
func ParseAccountType(value string) (AccountType, error) {
	for _, candidate := range validAccountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account type %q", value)
}
