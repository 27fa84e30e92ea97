package models

// WriteOptions contains configuration for CSV writing
type WriteOptions struct {
	Directory  string
	Filename   string
	AppendDate bool
}

// ChatHeaders are the CSV columns of an exported history.
var ChatHeaders = []string{"date", "time", "sender", "message"}
