package logs

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// SystemLog is one audited API operation.
type SystemLog struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Level        string         `gorm:"size:20;not null" json:"level"`
	Service      string         `gorm:"size:100;not null" json:"service"`
	Action       string         `gorm:"size:100;not null;index" json:"action"`
	Message      string         `gorm:"type:text;not null" json:"message"`
	RequestID    *string        `gorm:"size:64;index" json:"request_id,omitempty"`
	UserID       *uint          `gorm:"index" json:"user_id,omitempty"`
	LanguageCode *string        `gorm:"size:35" json:"language_code,omitempty"`
	VoiceName    *string        `gorm:"size:100" json:"voice_name,omitempty"`
	ChunkIndex   *int           `json:"chunk_index,omitempty"`
	TotalChunks  *int           `json:"total_chunks,omitempty"`
	ChunkLengths ChunkLengths   `gorm:"column:chunk_lengths" json:"chunk_lengths,omitempty"`
	Metadata     datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (SystemLog) TableName() string {
	return "logs"
}

// ChunkLengths stores per-chunk character counts: bigint[] on postgres, text elsewhere.
type ChunkLengths pq.Int64Array

func (ChunkLengths) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "bigint[]"
	}
	return "text"
}

func (c ChunkLengths) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return pq.Int64Array(c).Value()
}

func (c *ChunkLengths) Scan(src any) error {
	return (*pq.Int64Array)(c).Scan(src)
}

type LogFilterInput struct {
	Level     *string    `json:"level"`
	Service   *string    `json:"service"`
	Action    *string    `json:"action"`
	RequestID *string    `json:"request_id"`
	UserID    *uint      `json:"user_id"`
	Since     *time.Time `json:"since"`
	Until     *time.Time `json:"until"`

	Search   *string `json:"search"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

type AggItem struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type LogAggregates struct {
	ByAction   []AggItem `json:"by_action"`
	ByLanguage []AggItem `json:"by_language"`
	ByLevel    []AggItem `json:"by_level"`
}

// LogPage is one page of GetLogs results with the paging actually applied.
type LogPage struct {
	Data       []SystemLog   `json:"data"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"total_pages"`
	Aggregates LogAggregates `json:"aggregates"`
}
