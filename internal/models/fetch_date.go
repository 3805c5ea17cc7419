package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// FetchDate holds a warehouse date value exactly as the driver returned it, so it
// can be bound back into a follow-up query without a lossy conversion.
type FetchDate struct {
	raw   any
	Valid bool
}

// NewFetchDate wraps a time value
func NewFetchDate(t time.Time) FetchDate {
	return FetchDate{raw: t, Valid: true}
}

// ParseFetchDate wraps a textual date value
func ParseFetchDate(s string) FetchDate {
	return FetchDate{raw: s, Valid: true}
}

// Scan implements sql.Scanner
func (d *FetchDate) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.raw, d.Valid = nil, false
	case time.Time:
		d.raw, d.Valid = v, true
	case string:
		d.raw, d.Valid = v, true
	case []byte:
		d.raw, d.Valid = string(v), true
	default:
		return fmt.Errorf("unsupported date value of type %T", src)
	}
	return nil
}

// Value implements driver.Valuer
func (d FetchDate) Value() (driver.Value, error) {
	if !d.Valid {
		return nil, nil
	}
	return d.raw, nil
}

// String renders dates as ISO-8601; midnight values render as a plain date
func (d FetchDate) String() string {
	if !d.Valid {
		return ""
	}
	switch v := d.raw.(type) {
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format(time.RFC3339Nano)
	case string:
		return v
	}
	return fmt.Sprint(d.raw)
}

// MarshalJSON renders the date as a string, or null when absent
func (d FetchDate) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}
