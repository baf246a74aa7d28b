package handler

import (
	"net/http"
	"time"

	"github.com/emberhold/GuildShop_Go/internal/catalog"
	"github.com/emberhold/GuildShop_Go/internal/logger"
	"github.com/emberhold/GuildShop_Go/internal/shop"
)

// PurchaseRequest is the body for a shop purchase
type PurchaseRequest struct {
	UserID   string `json:"user_id" validate:"required,uuid"`
	ItemID   int    `json:"item_id" validate:"required,gt=0"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// HandlePurchase buys copies of a catalog item for a user
func HandlePurchase(service shop.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PurchaseRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Purchase"); err != nil {
			return
		}

		userID, ok := parseUserID(w, req.UserID)
		if !ok {
			return
		}

		log := logger.FromContext(r.Context())
		log.Debug("Purchase request", "user_id", userID, "item_id", req.ItemID, "quantity", req.Quantity)

		result, err := service.Purchase(r.Context(), userID, req.ItemID, req.Quantity)
		if err != nil {
			respondServiceError(w, r, "Purchase", err)
			return
		}

		respondJSON(w, http.StatusOK, result)
	}
}

// HandleGetCatalog returns all currently active catalog items
func HandleGetCatalog(service catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := service.GetActiveItems(r.Context())
		if err != nil {
			respondServiceError(w, r, "Get catalog", err)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: items})
	}
}

// HandleGetFeatured returns today's featured rotation
func HandleGetFeatured(service catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := service.FeaturedSelection(r.Context(), time.Now().UTC())
		if err != nil {
			respondServiceError(w, r, "Get featured items", err)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: items})
	}
}

// HandleGetDaily returns the user's personalized daily selection
func HandleGetDaily(service catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userIDStr, ok := GetQueryParam(r, w, "user_id")
		if !ok {
			return
		}
		userID, ok := parseUserID(w, userIDStr)
		if !ok {
			return
		}

		items, err := service.DailySelection(r.Context(), userID, time.Now().UTC())
		if err != nil {
			respondServiceError(w, r, "Get daily items", err)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: items})
	}
}
