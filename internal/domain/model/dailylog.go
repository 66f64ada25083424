package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Sample is one telemetry observation posted by a vehicle endpoint,
// per spec.md §4.5. Optional fields are pointers so "not present in
// this sample" is distinguishable from a zero reading.
type Sample struct {
	Gear     *string  `json:"gear,omitempty"`
	RPM      *float64 `json:"rpm,omitempty"`
	Speed    *int     `json:"speed,omitempty"`
	Location *string  `json:"location,omitempty"`
	Temp     *float64 `json:"temp,omitempty"`
	Fuel     *float64 `json:"fuel,omitempty"`
	Odo      int      `json:"odo"`
	Stressed bool     `json:"stressed"`
}

// MaxSpeed is the running peak speed for a DailyLog, with the IST
// wall-clock time it was hit, per spec.md §3/§4.5.
type MaxSpeed struct {
	Value int    `bson:"value" json:"value"`
	HitAt string `bson:"hit_at" json:"hit_at"`
}

// DailyLog is the rolling per-(vehicle, day) aggregate, per spec.md §3.
type DailyLog struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Date         string             `bson:"date" json:"date"`
	DateKey      string             `bson:"date_key,omitempty" json:"-"`
	AverageSpeed int                `bson:"average_speed" json:"average_speed"`
	Distance     int                `bson:"distance" json:"distance"`
	Stress       int                `bson:"stress" json:"stress"`
	LastOdometer int                `bson:"last_odometer" json:"last_odometer"`
	MessageCount int                `bson:"message_count" json:"message_count"`
	MaxSpeed     MaxSpeed           `bson:"max_speed" json:"max_speed"`
}

// PeriodicSummary is the reduction spec.md §4.5 describes for
// periodiclogs/overall_logs: sums distance and stress count across the
// days scanned, means average_speed, takes the max max_speed, and
// reports the last odometer reading of the final document iterated.
type PeriodicSummary struct {
	Distance     int      `json:"distance"`
	AverageSpeed int      `json:"average_speed"`
	MaxSpeed     MaxSpeed `json:"max_speed"`
	LastOdometer int      `json:"last_odometer"`
	StressCount  int      `json:"stress_count"`
	Degradation  float64  `json:"degradation"`
	DayCount     int      `json:"day_count"`
}
