package models

import "time"

// LedgerEntry records that a bookkeeping step keyed by Key has been applied.
type LedgerEntry struct {
	Key       string    `json:"key" bson:"_id" gorm:"primaryKey;size:255"`
	ClaimedAt time.Time `json:"claimed_at" bson:"claimed_at"`
}

func (LedgerEntry) TableName() string {
	return "bookkeeping_ledger"
}
