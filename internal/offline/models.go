package offline

import (
	"time"

	"gorm.io/datatypes"

	"github.com/mrlokans/bookshelf/internal/bookshape"
)

// MutationState tracks a client-side change from local application to
// server confirmation.
type MutationState string

const (
	// StatePendingLocal: applied locally and waiting behind earlier queued
	// changes to the same book.
	StatePendingLocal MutationState = "pending-local"
	// StateSynced: confirmed by the server on the first attempt.
	StateSynced MutationState = "synced"
	// StateQueuedOffline: applied locally and queued because the server was
	// unreachable.
	StateQueuedOffline MutationState = "queued-offline"
	// StateReplayed: confirmed by the server during a sync pass.
	StateReplayed MutationState = "replayed"
	// StateReplayFailed: rejected or errored during a sync pass; stays queued.
	StateReplayFailed MutationState = "replay-failed"
)

type MutationKind string

const (
	KindCreateBook   MutationKind = "create_book"
	KindUpdateBook   MutationKind = "update_book"
	KindUpdateReview MutationKind = "update_review"
	KindCreateQuote  MutationKind = "create_quote"
	KindUpdateQuote  MutationKind = "update_quote"
	KindDeleteQuote  MutationKind = "delete_quote"
)

// Mutation is one entry of the durable offline queue. Entries replay in
// ascending ID order and are deleted once the server confirms them.
type Mutation struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Kind      MutationKind   `gorm:"size:32;not null" json:"kind"`
	Target    string         `gorm:"size:96;index;not null" json:"target"`
	LocalID   string         `gorm:"size:64" json:"local_id,omitempty"`
	Payload   datatypes.JSON `json:"payload"`
	State     MutationState  `gorm:"size:32;not null;index" json:"state"`
	Attempts  int            `gorm:"default:0" json:"attempts"`
	LastError string         `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Mutation) TableName() string {
	return "offline_mutations"
}

// CachedBook is one book of the local snapshot, keyed by bookshape.LocalBook.Key.
// Position keeps the server's list order; books created offline get a
// smaller position so they list first.
type CachedBook struct {
	Key       string                                  `gorm:"primaryKey;size:64"`
	ServerID  uint                                    `gorm:"index"`
	Position  int                                     `gorm:"index"`
	Book      datatypes.JSONType[bookshape.LocalBook] `gorm:"column:payload"`
	UpdatedAt time.Time
}

func (CachedBook) TableName() string {
	return "cached_books"
}

type CachedShelf struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"size:255;not null"`
	Description *string `gorm:"type:text"`
	BookCount   int64
	UpdatedAt   time.Time
}

func (CachedShelf) TableName() string {
	return "cached_shelves"
}

// IDAlias records the server id an offline-created book received on replay.
type IDAlias struct {
	LocalID   string `gorm:"primaryKey;size:64"`
	ServerID  uint   `gorm:"index;not null"`
	CreatedAt time.Time
}

func (IDAlias) TableName() string {
	return "id_aliases"
}

// ClientSetting is a key/value pair of client state (device id, last sync).
type ClientSetting struct {
	Key       string `gorm:"primaryKey;size:100"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (ClientSetting) TableName() string {
	return "client_settings"
}

// Known client setting keys
const (
	SettingDeviceID     = "device_id"
	SettingLastLoadAt   = "last_load_at"
	SettingLastSyncAt   = "last_sync_at"
	SettingServerURL    = "server_url"
	SettingDeviceName   = "device_name"
	SettingRegisteredAt = "registered_at"
)
