package handler

import (
	"net/http"

	"github.com/emberhold/GuildShop_Go/internal/cases"
	"github.com/emberhold/GuildShop_Go/internal/logger"
)

// OpenCaseRequest is the body for opening a case
type OpenCaseRequest struct {
	UserID     string `json:"user_id" validate:"required,uuid"`
	CaseItemID int    `json:"case_item_id" validate:"required,gt=0"`
}

// HandleOpenCase consumes one case from the user's inventory and rolls a prize
func HandleOpenCase(service cases.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OpenCaseRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Open case"); err != nil {
			return
		}

		userID, ok := parseUserID(w, req.UserID)
		if !ok {
			return
		}

		log := logger.FromContext(r.Context())
		log.Debug("Open case request", "user_id", userID, "case_item_id", req.CaseItemID)

		result, err := service.OpenCase(r.Context(), userID, req.CaseItemID)
		if err != nil {
			respondServiceError(w, r, "Open case", err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}
