// Package feedlog provides the durable append-only feeding log and the
// household account table backing the bot's admin commands.
package feedlog

import "time"

// FoodKind enumerates the food types a feeding can record.
type FoodKind string

const (
	FoodDry FoodKind = "dry"
	FoodWet FoodKind = "wet"
)

// FeedingEvent is one immutable feeding record. Rows are only ever rewritten
// by an administrative rename (feeder display name) or removed by the purge
// rollover variant.
type FeedingEvent struct {
	ID         string
	Pet        string
	Kind       FoodKind
	At         time.Time // UTC instant; converted to the household zone at render time
	FeederID   int64
	FeederName string
}

// Gender tags affect grammatical phrasing in Russian status reports.
type Gender string

const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// Account is a durable household member record. Deactivation is a soft
// delete: the row remains with Active=false.
type Account struct {
	ID          int64
	Username    string
	DisplayName string
	Admin       bool
	Active      bool
	Gender      Gender
	CreatedAt   time.Time
}
