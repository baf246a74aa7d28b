package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/emberhold/GuildShop_Go/internal/admin"
	"github.com/emberhold/GuildShop_Go/internal/logger"
)

// HandleDeleteItem removes a catalog item, refunding every holder and
// cleaning up drop tables, instances, and equipped slots.
func HandleDeleteItem(service admin.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemIDStr := chi.URLParam(r, "itemID")
		itemID, err := strconv.Atoi(itemIDStr)
		if err != nil || itemID <= 0 {
			http.Error(w, ErrMsgInvalidItemID, http.StatusBadRequest)
			return
		}

		log := logger.FromContext(r.Context())
		log.Info("Admin item deletion requested", "item_id", itemID)

		report, err := service.DeleteItem(r.Context(), itemID)
		if err != nil {
			respondServiceError(w, r, "Delete item", err)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Message: MsgItemDeleted, Data: report})
	}
}
