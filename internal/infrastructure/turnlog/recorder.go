package turnlog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TurnRecord is one processed turn persisted for audit and debugging.
type TurnRecord struct {
	ID           string         `gorm:"primaryKey;type:uuid"`
	Model        string         `gorm:"index"`
	Status       string         `gorm:"index"`
	DurationMS   int64
	MessageCount int
	ToolsState   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"index"`
}

// Recorder persists turn records. The nop implementation is used when no
// database is configured.
type Recorder interface {
	Record(ctx context.Context, rec TurnRecord)
}

// NopRecorder discards every record.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, TurnRecord) {}

// GormRecorder writes turn records to PostgreSQL. Failures are logged, never
// surfaced; persistence must not break a turn that already streamed.
type GormRecorder struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewGormRecorder wires a recorder over an open connection.
func NewGormRecorder(db *gorm.DB, log zerolog.Logger) *GormRecorder {
	return &GormRecorder{db: db, log: log}
}

func (r *GormRecorder) Record(ctx context.Context, rec TurnRecord) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		r.log.Warn().Err(err).Str("turn_id", rec.ID).Msg("persist turn record failed")
	}
}
