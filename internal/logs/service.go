package logs

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LogService struct {
	DB *gorm.DB
}

// Log stores entry; metadata is marshalled to JSON and silently dropped if that fails.
func (ls *LogService) Log(entry SystemLog, metadata any) error {
	var meta datatypes.JSON
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			meta = datatypes.JSON(b)
		}
	}

	newLog := SystemLog{
		Level:        entry.Level,
		Service:      entry.Service,
		Action:       entry.Action,
		Message:      entry.Message,
		RequestID:    entry.RequestID,
		UserID:       entry.UserID,
		LanguageCode: entry.LanguageCode,
		VoiceName:    entry.VoiceName,
		ChunkIndex:   entry.ChunkIndex,
		TotalChunks:  entry.TotalChunks,
		ChunkLengths: entry.ChunkLengths,
		Metadata:     meta,
		CreatedAt:    time.Now(),
	}

	return ls.DB.Create(&newLog).Error
}

// GetLogs returns the filtered page; Page and PageSize in the result are the
// normalized values used for the query.
func (ls *LogService) GetLogs(input LogFilterInput) (LogPage, error) {
	if input.Page <= 0 {
		input.Page = 1
	}
	if input.PageSize <= 0 || input.PageSize > 100 {
		input.PageSize = 20
	}

	base := ls.DB.Model(&SystemLog{})

	// last 30 days unless a range is given
	if input.Since == nil && input.Until == nil {
		base = base.Where("logs.created_at >= ?", time.Now().AddDate(0, 0, -30))
	}
	if input.Since != nil {
		base = base.Where("logs.created_at >= ?", *input.Since)
	}
	if input.Until != nil {
		base = base.Where("logs.created_at < ?", *input.Until)
	}

	if v := trimmed(input.Level); v != "" {
		base = base.Where("logs.level = ?", v)
	}
	if v := trimmed(input.Service); v != "" {
		base = base.Where("logs.service = ?", v)
	}
	if v := trimmed(input.Action); v != "" {
		base = base.Where("logs.action = ?", v)
	}
	if v := trimmed(input.RequestID); v != "" {
		base = base.Where("logs.request_id = ?", v)
	}
	if input.UserID != nil {
		base = base.Where("logs.user_id = ?", *input.UserID)
	}

	if v := trimmed(input.Search); v != "" {
		like := "%" + strings.ToLower(v) + "%"
		base = base.Where(
			`LOWER(logs.message) LIKE ?
			 OR LOWER(logs.action) LIKE ?
			 OR LOWER(COALESCE(logs.voice_name,'')) LIKE ?
			 OR LOWER(COALESCE(logs.language_code,'')) LIKE ?
			 OR LOWER(COALESCE(logs.request_id,'')) LIKE ?`,
			like, like, like, like, like,
		)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return LogPage{}, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(input.PageSize)))
	if totalPages == 0 {
		totalPages = 1
	}

	rows := []SystemLog{}
	if err := base.
		Session(&gorm.Session{}).
		Order("logs.created_at DESC").
		Order("logs.id DESC").
		Limit(input.PageSize).
		Offset((input.Page - 1) * input.PageSize).
		Find(&rows).Error; err != nil {
		return LogPage{}, err
	}

	aggs, err := ls.getAggregatesFromBase(base)
	if err != nil {
		return LogPage{}, err
	}

	return LogPage{
		Data:       rows,
		Page:       input.Page,
		PageSize:   input.PageSize,
		Total:      total,
		TotalPages: totalPages,
		Aggregates: aggs,
	}, nil
}

func (ls *LogService) getAggregatesFromBase(base *gorm.DB) (LogAggregates, error) {
	limit := 12

	// derived table so every aggregate sees the same filters
	sub := base.Session(&gorm.Session{}).Select("logs.action, logs.language_code, logs.level")
	derived := ls.DB.Table("(?) as x", sub)

	group := func(expr string) ([]AggItem, error) {
		out := []AggItem{}
		err := derived.Session(&gorm.Session{}).
			Select(expr + " AS label, COUNT(*) AS count").
			Group("label").
			Order("count DESC").
			Limit(limit).
			Scan(&out).Error
		return out, err
	}

	var (
		aggs LogAggregates
		err  error
	)
	if aggs.ByAction, err = group("x.action"); err != nil {
		return LogAggregates{}, err
	}
	if aggs.ByLanguage, err = group("COALESCE(NULLIF(TRIM(x.language_code), ''), 'No language')"); err != nil {
		return LogAggregates{}, err
	}
	if aggs.ByLevel, err = group("x.level"); err != nil {
		return LogAggregates{}, err
	}
	return aggs, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// NopLogService discards entries; used when no database is configured.
type NopLogService struct{}

func (NopLogService) Log(SystemLog, any) error { return nil }
