package models

import (
	"time"
)

// Provenance column names added to every flattened record
const (
	ColBroker     = "Broker"
	ColSentDate   = "Email Sent Date"
	ColEmailFile  = "Email File"
	ColReportDate = "Report Date"
)

// SentDateLayout is the display layout of the sent date column
const SentDateLayout = "2006-01-02 15:04:05"

// Field is one named value of a record. Values are strings, numbers,
// time.Time or nil for unknown.
type Field struct {
	Name  string
	Value any
}

// Record represents one row of a position list
type Record struct {
	Broker     string
	Origin     string
	SentAt     time.Time
	ReportDate time.Time
	Fields     []Field
}

// Get returns the value of the named field
func (r *Record) Get(name string) (any, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Text returns the named field as a string, empty when absent or not text
func (r *Record) Text(name string) string {
	v, _ := r.Get(name)
	s, _ := v.(string)
	return s
}

// Set replaces the named field or appends it
func (r *Record) Set(name string, value any) {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			r.Fields[i].Value = value
			return
		}
	}
	r.Fields = append(r.Fields, Field{Name: name, Value: value})
}

// Flatten returns the record as ordered fields with the provenance columns
// first. The sent date is rendered in loc.
func (r *Record) Flatten(loc *time.Location) []Field {
	if loc == nil {
		loc = time.Local
	}

	out := make([]Field, 0, len(r.Fields)+4)
	out = append(out, Field{Name: ColBroker, Value: r.Broker})
	var sent any
	if !r.SentAt.IsZero() {
		sent = r.SentAt.In(loc).Format(SentDateLayout)
	}
	out = append(out, Field{Name: ColSentDate, Value: sent})
	out = append(out, Field{Name: ColEmailFile, Value: r.Origin})
	if !r.ReportDate.IsZero() {
		out = append(out, Field{Name: ColReportDate, Value: r.ReportDate})
	}
	return append(out, r.Fields...)
}
