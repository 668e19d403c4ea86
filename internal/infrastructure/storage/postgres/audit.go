package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"apikit/internal/domain/auth"
)

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// Compile-time check that AuditLog implements auth.AuditLogger.
var _ auth.AuditLogger = (*AuditLog)(nil)

// AuditEntry represents a single row of auth_audit.
type AuditEntry struct {
	Action            string          `db:"action"`
	UserID            *int64          `db:"user_id"`
	Username          string          `db:"username"`
	Details           json.RawMessage `db:"details"`
	DetailsCompressed []byte          `db:"details_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AuditLog stores authentication events.
type AuditLog struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	compressThreshold int
}

// NewAuditLog creates a new audit log.
func NewAuditLog(txManager *TxManager) (*AuditLog, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	return &AuditLog{
		txManager:         txManager,
		encoder:           encoder,
		compressThreshold: 4 * 1024,
	}, nil
}

// Record inserts an audit entry for event.
func (a *AuditLog) Record(ctx context.Context, event auth.Event) error {
	entry, err := a.entry(event)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO auth_audit (
			action, user_id, username, details, details_compressed,
			compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = a.txManager.DB(ctx).Exec(ctx, query,
		entry.Action, entry.UserID, entry.Username,
		entry.Details, entry.DetailsCompressed, entry.CompressionAlgo,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// entry builds the row for event, compressing large details.
func (a *AuditLog) entry(event auth.Event) (AuditEntry, error) {
	entry := AuditEntry{
		Action:          event.Action,
		Username:        event.Username,
		CompressionAlgo: CompressionNone,
		CreatedAt:       event.OccurredAt,
	}
	if event.UserID != 0 {
		uid := event.UserID
		entry.UserID = &uid
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if len(event.Details) == 0 {
		return entry, nil
	}

	details, err := json.Marshal(event.Details)
	if err != nil {
		return AuditEntry{}, fmt.Errorf("marshal details: %w", err)
	}

	if len(details) > a.compressThreshold {
		entry.DetailsCompressed = a.encoder.EncodeAll(details, nil)
		entry.CompressionAlgo = CompressionZstd
		return entry, nil
	}

	entry.Details = details
	return entry, nil
}
