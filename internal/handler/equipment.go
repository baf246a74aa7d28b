package handler

import (
	"net/http"
	"strings"

	"github.com/emberhold/GuildShop_Go/internal/domain"
	"github.com/emberhold/GuildShop_Go/internal/equipment"
	"github.com/emberhold/GuildShop_Go/internal/logger"
)

// EquipRequest is the body for equipping a single item
type EquipRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	ItemID int    `json:"item_id" validate:"required,gt=0"`
}

// UnequipRequest clears a category slot
type UnequipRequest struct {
	UserID   string `json:"user_id" validate:"required,uuid"`
	Category string `json:"category" validate:"required,category"`
}

// UnequipBadgeRequest clears the badge slot if the given badge occupies it
type UnequipBadgeRequest struct {
	UserID  string `json:"user_id" validate:"required,uuid"`
	BadgeID int    `json:"badge_id" validate:"required,gt=0"`
}

// BatchEquipRequest equips several items in one call
type BatchEquipRequest struct {
	UserID  string `json:"user_id" validate:"required,uuid"`
	ItemIDs []int  `json:"item_ids" validate:"required,min=1,max=10,dive,gt=0"`
}

// HandleEquip makes an item active in its category slot
func HandleEquip(service equipment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EquipRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Equip item"); err != nil {
			return
		}

		userID, ok := parseUserID(w, req.UserID)
		if !ok {
			return
		}

		if err := service.Equip(r.Context(), userID, req.ItemID); err != nil {
			respondServiceError(w, r, "Equip item", err)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgItemEquipped})
	}
}

// HandleUnequip clears whatever occupies a category slot
func HandleUnequip(service equipment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UnequipRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Unequip slot"); err != nil {
			return
		}

		userID, ok := parseUserID(w, req.UserID)
		if !ok {
			return
		}

		category := domain.Category(strings.ToUpper(req.Category))
		if err := service.Unequip(r.Context(), userID, category); err != nil {
			respondServiceError(w, r, "Unequip slot", err)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgSlotCleared})
	}
}

// HandleUnequipBadge clears the badge slot only when the named badge is equipped
func HandleUnequipBadge(service equipment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UnequipBadgeRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Unequip badge"); err != nil {
			return
		}

		userID, ok := parseUserID(w, req.UserID)
		if !ok {
			return
		}

		if err := service.UnequipBadge(r.Context(), userID, req.BadgeID); err != nil {
			respondServiceError(w, r, "Unequip badge", err)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgBadgeUnequipped})
	}
}

// HandleBatchEquip equips several items in order after validating them all
func HandleBatchEquip(service equipment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BatchEquipRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Batch equip"); err != nil {
			return
		}

		userID, ok := parseUserID(w, req.UserID)
		if !ok {
			return
		}

		log := logger.FromContext(r.Context())
		log.Debug("Batch equip request", "user_id", userID, "item_count", len(req.ItemIDs))

		if err := service.BatchEquip(r.Context(), userID, req.ItemIDs); err != nil {
			respondServiceError(w, r, "Batch equip", err)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgBatchEquipped})
	}
}
