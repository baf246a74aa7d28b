package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Lookup errors
	ErrMsgUserNotFound = "user not found"
	ErrMsgItemNotFound = "item not found"

	// Purchase errors
	ErrMsgInvalidQuantity     = "invalid quantity"
	ErrMsgItemNotPurchasable  = "item is not purchasable"
	ErrMsgInsufficientCredits = "insufficient credits"
	ErrMsgRoleRequirement     = "required role not held"
	ErrMsgInsufficientStock   = "insufficient stock"
	ErrMsgItemAlreadyOwned    = "item already owned"

	// Case errors
	ErrMsgCaseNotOwned        = "case not owned"
	ErrMsgNotACase            = "item is not a case"
	ErrMsgEmptyCase           = "case has no drop table"
	ErrMsgInvalidCaseContents = "case drop weights do not sum to 100"

	// Equipment errors
	ErrMsgItemNotEquippable = "item is not equippable"
	ErrMsgItemNotOwned      = "item not owned"
	ErrMsgBadgeNotEquipped  = "badge is not equipped"

	// Input errors
	ErrMsgInvalidInput = "invalid input"

	// Database/System errors
	ErrMsgTxClosed = "tx is closed"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Lookup errors
	ErrUserNotFound = errors.New(ErrMsgUserNotFound)
	ErrItemNotFound = errors.New(ErrMsgItemNotFound)

	// Purchase errors
	ErrInvalidQuantity     = errors.New(ErrMsgInvalidQuantity)
	ErrItemNotPurchasable  = errors.New(ErrMsgItemNotPurchasable)
	ErrInsufficientCredits = errors.New(ErrMsgInsufficientCredits)
	ErrRoleRequirement     = errors.New(ErrMsgRoleRequirement)
	ErrInsufficientStock   = errors.New(ErrMsgInsufficientStock)
	ErrItemAlreadyOwned    = errors.New(ErrMsgItemAlreadyOwned)

	// Case errors. ErrEmptyCase and ErrInvalidCaseContents signal server
	// misconfiguration: they must never consume user resources.
	ErrCaseNotOwned        = errors.New(ErrMsgCaseNotOwned)
	ErrNotACase            = errors.New(ErrMsgNotACase)
	ErrEmptyCase           = errors.New(ErrMsgEmptyCase)
	ErrInvalidCaseContents = errors.New(ErrMsgInvalidCaseContents)

	// Equipment errors
	ErrItemNotEquippable = errors.New(ErrMsgItemNotEquippable)
	ErrItemNotOwned      = errors.New(ErrMsgItemNotOwned)
	ErrBadgeNotEquipped  = errors.New(ErrMsgBadgeNotEquipped)

	// Validation errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)

// IsDomainError reports whether err is one of the recoverable, user-facing
// domain errors (as opposed to infrastructure failures).
func IsDomainError(err error) bool {
	for _, de := range []error{
		ErrUserNotFound, ErrItemNotFound,
		ErrInvalidQuantity, ErrItemNotPurchasable, ErrInsufficientCredits,
		ErrRoleRequirement, ErrInsufficientStock, ErrItemAlreadyOwned,
		ErrCaseNotOwned, ErrNotACase, ErrEmptyCase, ErrInvalidCaseContents,
		ErrItemNotEquippable, ErrItemNotOwned, ErrBadgeNotEquipped,
		ErrInvalidInput,
	} {
		if errors.Is(err, de) {
			return true
		}
	}
	return false
}
