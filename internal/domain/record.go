package domain

import (
	"errors"
	"time"
)

// ErrRecordExists is returned when a record with the same key was already created.
var ErrRecordExists = errors.New("record already exists")

// Coordinates is a latitude/longitude pair. The zero value means unresolved.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// IsZero reports whether the coordinate is the null sentinel.
func (c Coordinates) IsZero() bool {
	return c.Latitude == 0 && c.Longitude == 0
}

// ProcessedRecord is the write-once enriched representation of an entry.
type ProcessedRecord struct {
	ID                EntryKey
	Category          string
	Country           string
	TitleOriginal     string
	SummaryOriginal   string
	TitleTranslated   string
	SummaryTranslated string
	LocationName      string
	Coordinates       Coordinates
	Severity          int
	SourceLink        string
	CreatedAt         time.Time
}

// Alert is the payload handed to the notification channel.
type Alert struct {
	Headline string
	Location string
	RecordID EntryKey
}
