package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go-leather-stock/internal/ws"
)

// HubNotifier publishes committed stock changes to websocket clients.
type HubNotifier struct {
	hub *ws.Hub
}

func NewHubNotifier(hub *ws.Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) StockChanged(ctx context.Context, change StockChange) error {
	msg, err := json.Marshal(stockUpdatePayload(change))
	if err != nil {
		return err
	}
	if !n.hub.Publish(msg) {
		return fmt.Errorf("stock update for record %s not published", change.Record.ID)
	}
	return nil
}

func stockUpdatePayload(change StockChange) map[string]interface{} {
	record := change.Record
	payload := map[string]interface{}{
		"type":   "stock_update",
		"action": change.Action,
		"record": map[string]interface{}{
			"id":               record.ID,
			"item_id":          record.ItemID,
			"storage_location": record.StorageLocation,
			"quantity":         record.Quantity,
			"status":           record.Status,
			"is_active":        record.IsActive,
		},
		"user": map[string]interface{}{
			"id": change.Actor,
		},
	}
	if t := change.Transaction; t != nil {
		payload["transaction"] = map[string]interface{}{
			"id":               t.ID,
			"transaction_type": t.TransactionType,
			"adjustment_type":  t.AdjustmentType,
			"quantity":         t.Quantity,
			"is_addition":      t.IsAddition,
			"quantity_after":   t.QuantityAfter,
		}
		payload["message"] = fmt.Sprintf("%s %s at %s (%s)", t.SignedQuantity(), t.Reason(), record.StorageLocation, record.Status)
	}
	return payload
}

