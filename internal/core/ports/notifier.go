package ports

import (
	"context"
	"time"
)

// ETransferNotice tells the recipient of an e-transfer that funds were sent.
type ETransferNotice struct {
	ReferenceNumber string    `json:"referenceNumber"`
	CustomerID      string    `json:"customerID"`
	RecipientName   string    `json:"recipientName"`
	RecipientEmail  string    `json:"recipientEmail"`
	RecipientPhone  string    `json:"recipientPhone,omitempty"`
	Method          string    `json:"notificationMethod"`
	Amount          float64   `json:"amount"`
	IssuedAt        time.Time `json:"issuedAt"`
}

// Notifier delivers e-transfer notices to the messaging system.
type Notifier interface {
	NotifyETransfer(ctx context.Context, notice ETransferNotice) error
}
