package handler

import (
	"errors"
	"net/http"

	"github.com/emberhold/GuildShop_Go/internal/domain"
	"github.com/emberhold/GuildShop_Go/internal/logger"
)

// Request parsing error messages
const (
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgMissingQueryParam     = "Missing %s query parameter"
	ErrMsgInvalidUserID         = "Invalid user ID"
	ErrMsgInvalidItemID         = "Invalid item ID"
)

// User-facing error messages for service errors
// These messages are derived from domain errors and provide helpful guidance to users
const (
	// Generic messages
	ErrMsgGenericServerError = "Something went wrong"
	ErrMsgUnknownError       = "Unknown error"

	// User and catalog messages
	ErrMsgUserNotFoundError       = "User not found"
	ErrMsgItemNotFoundError       = "Item not found"
	ErrMsgInvalidQuantityError    = "Invalid quantity"
	ErrMsgNotPurchasableError     = "Item is not available for purchase"
	ErrMsgNotEnoughCreditsError   = "Not enough credits"
	ErrMsgRoleRequiredError       = "You don't have the required role"
	ErrMsgSoldOutError            = "Item is sold out"
	ErrMsgAlreadyOwnedError       = "You already own that item"

	// Case messages
	ErrMsgCaseNotOwnedError  = "You don't have that case"
	ErrMsgNotACaseError      = "That item is not a case"
	ErrMsgCaseMisconfigError = "Case is misconfigured. Contact an admin."

	// Equipment messages
	ErrMsgNotEquippableError    = "That item cannot be equipped"
	ErrMsgNotOwnedError         = "You don't own that item"
	ErrMsgBadgeNotEquippedError = "That badge is not equipped"

	// Input messages
	ErrMsgInvalidInputError = "Invalid request. Please check your inputs."
)

// mapServiceErrorToUserMessage maps domain errors to user-friendly HTTP responses.
// Misconfigured case contents surface as server errors so operators
// investigate rather than the user retrying.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, ErrMsgUserNotFoundError
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound, ErrMsgItemNotFoundError
	case errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest, ErrMsgInvalidQuantityError
	case errors.Is(err, domain.ErrItemNotPurchasable):
		return http.StatusBadRequest, ErrMsgNotPurchasableError
	case errors.Is(err, domain.ErrInsufficientCredits):
		return http.StatusBadRequest, ErrMsgNotEnoughCreditsError
	case errors.Is(err, domain.ErrRoleRequirement):
		return http.StatusForbidden, ErrMsgRoleRequiredError
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict, ErrMsgSoldOutError
	case errors.Is(err, domain.ErrItemAlreadyOwned):
		return http.StatusConflict, ErrMsgAlreadyOwnedError
	case errors.Is(err, domain.ErrCaseNotOwned):
		return http.StatusBadRequest, ErrMsgCaseNotOwnedError
	case errors.Is(err, domain.ErrNotACase):
		return http.StatusBadRequest, ErrMsgNotACaseError
	case errors.Is(err, domain.ErrEmptyCase):
		return http.StatusInternalServerError, ErrMsgCaseMisconfigError
	case errors.Is(err, domain.ErrInvalidCaseContents):
		return http.StatusInternalServerError, ErrMsgCaseMisconfigError
	case errors.Is(err, domain.ErrItemNotEquippable):
		return http.StatusBadRequest, ErrMsgNotEquippableError
	case errors.Is(err, domain.ErrItemNotOwned):
		return http.StatusBadRequest, ErrMsgNotOwnedError
	case errors.Is(err, domain.ErrBadgeNotEquipped):
		return http.StatusBadRequest, ErrMsgBadgeNotEquippedError
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidInputError
	}

	// Short non-domain errors pass through so tests and tooling can see
	// the cause; anything else collapses to the generic message.
	errMsg := err.Error()
	if errMsg != "" && len(errMsg) < 200 {
		return http.StatusInternalServerError, errMsg
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}

// respondServiceError logs a failed service call and writes the mapped
// error response.
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	logger.FromContext(r.Context()).Error("Operation failed", "operation", opName, "error", err)
	statusCode, userMsg := mapServiceErrorToUserMessage(err)
	respondError(w, statusCode, userMsg)
}
