package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/emberhold/GuildShop_Go/internal/domain"
)

// EventSchemaVersion is stamped on every published event
const EventSchemaVersion = "1.0"

// Type represents the type of an event
type Type string

// Common event types
const (
	ItemPurchased  Type = Type(domain.EventTypeItemPurchased)
	CaseOpened     Type = Type(domain.EventTypeCaseOpened)
	ItemEquipped   Type = Type(domain.EventTypeItemEquipped)
	ItemUnequipped Type = Type(domain.EventTypeItemUnequipped)
	ItemDeleted    Type = Type(domain.EventTypeItemDeleted)
)

// Metadata defines the type for event metadata
type Metadata interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// NewItemPurchasedEvent builds the event published after a committed purchase
func NewItemPurchasedEvent(userID string, itemID int, itemName string, quantity, unitPrice int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    ItemPurchased,
		Payload: domain.ItemPurchasedPayloadV1{
			UserID:     userID,
			ItemID:     itemID,
			ItemName:   itemName,
			Quantity:   quantity,
			UnitPrice:  unitPrice,
			TotalPrice: unitPrice * quantity,
			Timestamp:  time.Now().Unix(),
		},
	}
}

// NewCaseOpenedEvent builds the event published after a committed case open
func NewCaseOpenedEvent(userID string, caseItemID, rollValue, prizeItemID int, alreadyOwned bool) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    CaseOpened,
		Payload: domain.CaseOpenedPayloadV1{
			UserID:       userID,
			CaseItemID:   caseItemID,
			RollValue:    rollValue,
			PrizeItemID:  prizeItemID,
			AlreadyOwned: alreadyOwned,
			Timestamp:    time.Now().Unix(),
		},
	}
}

// NewItemEquippedEvent builds the equip/unequip event
func NewItemEquippedEvent(t Type, userID string, itemID int, category domain.Category) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    t,
		Payload: domain.ItemEquippedPayloadV1{
			UserID:    userID,
			ItemID:    itemID,
			Category:  string(category),
			Timestamp: time.Now().Unix(),
		},
	}
}

// NewItemDeletedEvent builds the event published after an admin cascade delete
func NewItemDeletedEvent(itemID, instancesRemoved, creditsRefunded, usersAffected int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    ItemDeleted,
		Payload: domain.ItemDeletedPayloadV1{
			ItemID:           itemID,
			InstancesRemoved: instancesRemoved,
			CreditsRefunded:  creditsRefunded,
			UsersAffected:    usersAffected,
			Timestamp:        time.Now().Unix(),
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d handler(s) failed for event %s: %v", len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
