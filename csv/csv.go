// Package csv exports parsed histories as CSV files.
package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"linehistory/history"
	"linehistory/models"
)

// ChatRows flattens h into date, time, sender, message rows in date order.
// Message lines are written as they appear in the export, joined with line
// breaks inside one field, so quotes around multi-line messages survive.
func ChatRows(h *history.History) [][]string {
	rows := make([][]string, 0, h.ChatCount())
	for _, day := range h.Days() {
		date := day.Date.String()
		for i := range day.Chats {
			chat := &day.Chats[i]
			rows = append(rows, []string{date, chat.Time.String(), chat.SenderName(), strings.Join(chat.MessageLines, "\n")})
		}
	}
	return rows
}

// HistoryFromRows rebuilds a history from rows produced by ChatRows. A
// leading header row is skipped.
func HistoryFromRows(rows [][]string) (*history.History, error) {
	h := history.New()
	for i, row := range rows {
		if i == 0 && len(row) > 0 && row[0] == models.ChatHeaders[0] {
			continue
		}
		if len(row) != len(models.ChatHeaders) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", i+1, len(models.ChatHeaders), len(row))
		}
		date, err := history.ParseDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date: %w", i+1, err)
		}
		clock, err := history.ParseClock(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid time: %w", i+1, err)
		}

		chat := history.Chat{Time: clock, MessageLines: strings.Split(row[3], "\n")}
		if row[2] != "" {
			sender := row[2]
			chat.Sender = &sender
		}
		h.Append(date, chat)
	}
	return h, nil
}

// ImportHistory reads a CSV file written by ExportHistory.
func ImportHistory(filePath string) (*history.History, error) {
	records, err := ReadCSV(filePath)
	if err != nil {
		return nil, err
	}
	return HistoryFromRows(records)
}

// ExportHistory writes every chat of h to a new CSV file and returns its path.
func ExportHistory(h *history.History, options models.WriteOptions) (string, error) {
	return WriteToCSV(ChatRows(h), models.ChatHeaders, options)
}

// WriteToCSV writes the given data to a CSV file
func WriteToCSV(data [][]string, headers []string, options models.WriteOptions) (string, error) {
	// Create directory if it doesn't exist
	if options.Directory != "" {
		if err := os.MkdirAll(options.Directory, 0755); err != nil {
			return "", fmt.Errorf("error creating directory: %w", err)
		}
	}

	// Generate filename
	filename := options.Filename
	if options.AppendDate {
		// Add timestamp and a short random id to filename to make it unique
		timestamp := time.Now().Format("2006-01-02_150405")
		randomChars := uuid.NewString()[:8]
		ext := filepath.Ext(filename)
		basename := filename[:len(filename)-len(ext)]
		filename = fmt.Sprintf("%s_%s_%s%s", basename, timestamp, randomChars, ext)
	}

	// Ensure .csv extension
	if filepath.Ext(filename) != ".csv" {
		filename = filename + ".csv"
	}

	// Create full path
	fullPath := filepath.Join(options.Directory, filename)

	// Create the file
	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	// Create CSV writer
	writer := csv.NewWriter(file)

	// Write headers if provided
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return "", fmt.Errorf("error writing headers to CSV: %w", err)
		}
	}

	// Write data rows
	if err := writer.WriteAll(data); err != nil {
		return "", fmt.Errorf("error writing data to CSV: %w", err)
	}

	return fullPath, nil
}

// AppendToCSV appends data to an existing CSV file or creates a new one if it doesn't exist
func AppendToCSV(data [][]string, filePath string, writeHeaders bool, headers []string) error {
	// Check if file exists to determine if we need to write headers
	fileExists := false
	if _, err := os.Stat(filePath); err == nil {
		fileExists = true
	}

	// Open file in append mode or create it
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error opening/creating CSV file: %w", err)
	}
	defer file.Close()

	// Create CSV writer
	writer := csv.NewWriter(file)

	// Write headers if the file is new and headers are provided
	if !fileExists && writeHeaders && len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return fmt.Errorf("error writing headers to CSV: %w", err)
		}
	}

	// Write data rows
	if err := writer.WriteAll(data); err != nil {
		return fmt.Errorf("error writing data to CSV: %w", err)
	}

	return nil
}

// ReadCSV reads data from a CSV file
func ReadCSV(filePath string) ([][]string, error) {
	// Open the file
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer file.Close()

	// Create CSV reader
	reader := csv.NewReader(file)

	// Read all records
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV file: %w", err)
	}

	return records, nil
}
