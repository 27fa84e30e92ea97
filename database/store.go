package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"linehistory/history"
)

// ChatRecord is one chat row. Date and time keep the export's own notation
// so every driver sorts and groups them the same way.
type ChatRecord struct {
	ID       uint    `gorm:"primaryKey"`
	ImportID string  `gorm:"size:36;index"`
	Date     string  `gorm:"size:10;index"` // YYYY/MM/DD
	Time     string  `gorm:"size:5"`        // HH:MM
	Seq      int     // position within the day
	Sender   *string `gorm:"size:255"`
	Message  string  `gorm:"type:text"`
}

// TableName pins the table name.
func (ChatRecord) TableName() string { return "chats" }

// DateCount is the number of chats stored for one date.
type DateCount struct {
	Date  string
	Count int64
}

// Migrate creates or updates the chats table.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&ChatRecord{}); err != nil {
		return fmt.Errorf("error migrating chats table: %w", err)
	}
	return nil
}

// Records converts h into rows tagged with importID.
func Records(h *history.History, importID string) []ChatRecord {
	records := make([]ChatRecord, 0, h.ChatCount())
	for _, day := range h.Days() {
		date := day.Date.String()
		for i := range day.Chats {
			chat := &day.Chats[i]
			records = append(records, ChatRecord{
				ImportID: importID,
				Date:     date,
				Time:     chat.Time.String(),
				Seq:      i,
				Sender:   chat.Sender,
				Message:  strings.Join(chat.MessageLines, "\n"),
			})
		}
	}
	return records
}

// SaveHistory inserts every chat of h in batches of batchSize and returns the
// import id stamped on the rows together with the number inserted.
func SaveHistory(ctx context.Context, db *gorm.DB, h *history.History, batchSize int) (string, int64, error) {
	importID := uuid.NewString()
	records := Records(h, importID)
	if len(records) == 0 {
		return importID, 0, nil
	}
	if batchSize <= 0 {
		batchSize = 1000
	}

	result := db.WithContext(ctx).CreateInBatches(records, batchSize)
	if result.Error != nil {
		return importID, result.RowsAffected, fmt.Errorf("error inserting chats: %w", result.Error)
	}
	return importID, result.RowsAffected, nil
}

// CountByDate returns the number of chats per date in ascending date order.
func CountByDate(ctx context.Context, db *gorm.DB) ([]DateCount, error) {
	var counts []DateCount
	err := db.WithContext(ctx).
		Model(&ChatRecord{}).
		Select("date, count(*) AS count").
		Group("date").
		Order("date").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("error counting chats: %w", err)
	}
	return counts, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// SearchByKeyword returns stored chats whose message contains keyword.
func SearchByKeyword(ctx context.Context, db *gorm.DB, keyword string) ([]ChatRecord, error) {
	var records []ChatRecord
	err := db.WithContext(ctx).
		Where("message LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(keyword)+"%").
		Order("date").Order("seq").Order("id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("error searching chats: %w", err)
	}
	return records, nil
}

// ToHistory rebuilds a history from stored rows.
func ToHistory(records []ChatRecord) (*history.History, error) {
	h := history.New()
	for _, r := range records {
		date, err := history.ParseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", r.ID, err)
		}
		clock, err := history.ParseClock(r.Time)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", r.ID, err)
		}
		h.Append(date, history.Chat{
			Time:         clock,
			Sender:       r.Sender,
			MessageLines: strings.Split(r.Message, "\n"),
		})
	}
	return h, nil
}
