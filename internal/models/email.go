package models

import "time"

// RawDocument represents one message handed to the extraction pipeline
type RawDocument struct {
	ID        string
	MessageID string
	Folder    string
	Subject   string
	From      string
	Body      string
	HTMLBody  string
	SentAt    time.Time
	TraceID   string
	Raw       []byte
}
