package helpers

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// GetNullString converts an optional string into a pgtype.Text, treating blank as NULL.
func GetNullString(s *string) pgtype.Text {
	if s == nil || *s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// StringPtr converts a scanned pgtype.Text back into an optional string.
func StringPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

// TimePtr converts a scanned pgtype.Timestamptz into an optional time.
func TimePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

// ToPgDate encodes a calendar day for a DATE column.
func ToPgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: DateOf(t), Valid: true}
}

// FromPgDate decodes a DATE column into midnight UTC.
func FromPgDate(d pgtype.Date) time.Time {
	return DateOf(d.Time)
}

// ToPgTime encodes a clock value for a TIME column.
func ToPgTime(t time.Time) pgtype.Time {
	t = t.UTC()
	micros := (int64(t.Hour())*3600 + int64(t.Minute())*60 + int64(t.Second())) * int64(time.Second/time.Microsecond)
	return pgtype.Time{Microseconds: micros, Valid: true}
}

// FromPgTime decodes a TIME column onto the 1970-01-01 UTC epoch date.
func FromPgTime(t pgtype.Time) time.Time {
	return time.Unix(0, 0).UTC().Add(time.Duration(t.Microseconds) * time.Microsecond)
}
