// Package telemetry implements the Telemetry Aggregator: the fold that
// turns a stream of per-vehicle samples into rolling DailyLog documents,
// and the three read-side reductions (daily, periodic, overall), per
// spec.md §4.5. No file in original_source/ survived filtering for this
// aggregator; the fold recipe below is grounded directly in spec.md's
// own prose description, reproduced exactly including its integer
// division, not the floating-point arithmetic a generic port would
// reach for.
package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alpadrive/fleet-server/internal/apperr"
	"github.com/alpadrive/fleet-server/internal/domain/model"
	"github.com/alpadrive/fleet-server/internal/store/mongo"
)

var istZone = time.FixedZone("IST", 5*3600+1800)

// Aggregator is internal/handler/http's LogReader and folds the
// telemetry-tagged inbound frames that Ingest hands it.
type Aggregator struct {
	logs       *mongo.Logs
	locks      *shardLocker
	dateFormat string
}

func NewAggregator(logs *mongo.Logs, shardCount int, dateFormat string) *Aggregator {
	if dateFormat != "iso" {
		dateFormat = "legacy"
	}
	return &Aggregator{logs: logs, locks: newShardLocker(shardCount), dateFormat: dateFormat}
}

// Fold applies one telemetry sample to vehicleID's running daily
// aggregate, creating the day's first document if none exists yet.
// Folds for the same vehicle serialize on the shard lock so the
// read-modify-replace below cannot race with itself, the documented
// concurrency defect spec.md §9 calls out.
func (a *Aggregator) Fold(ctx context.Context, vehicleID string, sample model.Sample) error {
	vid, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return apperr.Wrap(apperr.KindParse, "vehicle id is not a valid identifier", err)
	}

	unlock := a.locks.lock(vehicleID)
	defer unlock()

	now := time.Now()
	today := a.dateFields(now)

	existing, err := a.logs.FindLatest(ctx, vid)
	if err != nil {
		return err
	}

	var base model.DailyLog
	isNew := existing == nil || existing.Date != today.date
	if isNew {
		speed := 0
		if sample.Speed != nil {
			speed = *sample.Speed
		}
		base = model.DailyLog{
			Date:         today.date,
			DateKey:      today.dateKey,
			LastOdometer: sample.Odo,
			AverageSpeed: speed,
			MaxSpeed:     model.MaxSpeed{Value: speed, HitAt: formatIST(now)},
		}
	} else {
		base = *existing
	}

	updated := applyFold(base, sample, now)

	if isNew {
		_, err = a.logs.Insert(ctx, vid, updated)
	} else {
		err = a.logs.ReplaceByID(ctx, vid, updated)
	}
	return err
}

// applyFold is the pure recurrence from spec.md §4.5, applied once per
// sample against the day's running document.
func applyFold(base model.DailyLog, s model.Sample, now time.Time) model.DailyLog {
	log := base

	if s.Odo > 0 {
		log.Distance += s.Odo - log.LastOdometer
	}

	count := log.MessageCount

	if s.Speed != nil {
		speed := *s.Speed
		if speed > log.MaxSpeed.Value {
			log.MaxSpeed = model.MaxSpeed{Value: speed, HitAt: formatIST(now)}
		}
		if log.AverageSpeed > 0 {
			log.AverageSpeed = (log.AverageSpeed*count + speed) / (count + 1)
		} else {
			log.AverageSpeed = speed
		}
		count++
	}

	if s.Stressed {
		// A stress-only sample can arrive before any speed sample has
		// moved count off zero; clamp the denominator so the recurrence
		// stays defined. For count >= 1 this is the recurrence verbatim.
		denom := count
		if denom < 1 {
			denom = 1
		}
		log.Stress = (log.Stress*(denom-1) + 1) / denom
		count++
	}

	log.MessageCount = count
	log.LastOdometer = s.Odo
	return log
}

// Daily implements internal/handler/http's LogReader. An empty date
// resolves to today in the server's local time zone.
func (a *Aggregator) Daily(ctx context.Context, vehicleID, date string) (*model.DailyLog, error) {
	vid, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindParse, "vehicle id is not a valid identifier", err)
	}
	if date == "" {
		date = a.dateFields(time.Now()).date
	}
	field, value, err := a.queryValue(date)
	if err != nil {
		return nil, err
	}
	return a.logs.FindByDate(ctx, vid, field, value)
}

// Periodic implements internal/handler/http's LogReader, scanning
// documents with start <= date <= end, both given as D-M-YYYY strings,
// per spec.md §4.5. Legacy mode inherits the lexicographic compare on
// the D-M-YYYY field itself; iso mode converts both bounds and ranges
// over the calendar-ordered date_key field instead.
func (a *Aggregator) Periodic(ctx context.Context, vehicleID, start, end string) (*model.PeriodicSummary, error) {
	vid, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindParse, "vehicle id is not a valid identifier", err)
	}

	field := "date"
	startValue, endValue := start, end
	if a.dateFormat == "iso" {
		field = "date_key"
		if startValue, err = a.isoKey(start); err != nil {
			return nil, err
		}
		if endValue, err = a.isoKey(end); err != nil {
			return nil, err
		}
	}

	logs, err := a.logs.FindRange(ctx, vid, field, startValue, endValue)
	if err != nil {
		return nil, err
	}
	return reduce(logs), nil
}

// isoKey converts a D-M-YYYY bound to date_key form, passing empty
// bounds through untouched so a half-open range stays half-open.
func (a *Aggregator) isoKey(date string) (string, error) {
	if date == "" {
		return "", nil
	}
	t, err := parseLegacyDate(date)
	if err != nil {
		return "", apperr.Wrap(apperr.KindParse, "date must be D-M-YYYY", err)
	}
	return t.Format("2006-01-02"), nil
}

// Overall implements internal/handler/http's LogReader: the same
// reduction as Periodic with no date bound, per spec.md §4.5.
func (a *Aggregator) Overall(ctx context.Context, vehicleID string) (*model.PeriodicSummary, error) {
	vid, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindParse, "vehicle id is not a valid identifier", err)
	}
	field := "date"
	if a.dateFormat == "iso" {
		field = "date_key"
	}
	logs, err := a.logs.FindRange(ctx, vid, field, "", "")
	if err != nil {
		return nil, err
	}
	return reduce(logs), nil
}

func reduce(logs []model.DailyLog) *model.PeriodicSummary {
	summary := &model.PeriodicSummary{DayCount: len(logs)}
	if len(logs) == 0 {
		return summary
	}
	var degradationSum float64
	for _, log := range logs {
		summary.Distance += log.Distance
		summary.StressCount += log.Stress
		summary.AverageSpeed += log.AverageSpeed
		if log.MaxSpeed.Value > summary.MaxSpeed.Value {
			summary.MaxSpeed = log.MaxSpeed
		}
		degradationSum += float64(log.Stress) / 1000 * 0.01
	}
	summary.AverageSpeed /= len(logs)
	summary.Degradation = degradationSum / float64(len(logs))
	summary.LastOdometer = logs[len(logs)-1].LastOdometer
	return summary
}

// queryValue maps a caller-supplied D-M-YYYY date string to the field
// and value Logs.FindByDate should match, converting to date_key's
// YYYY-MM-DD form when the aggregator runs in iso mode.
func (a *Aggregator) queryValue(date string) (field, value string, err error) {
	if a.dateFormat != "iso" {
		return "date", date, nil
	}
	key, err := a.isoKey(date)
	if err != nil {
		return "", "", err
	}
	return "date_key", key, nil
}

type dateFields struct {
	date    string
	dateKey string
}

func (a *Aggregator) dateFields(t time.Time) dateFields {
	return dateFields{
		date:    fmt.Sprintf("%d-%d-%d", t.Day(), int(t.Month()), t.Year()),
		dateKey: t.Format("2006-01-02"),
	}
}

func parseLegacyDate(s string) (time.Time, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("expected D-M-YYYY, got %q", s)
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, err
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, err
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, err
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	if len(parts[2]) != 4 || t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("expected D-M-YYYY, got %q", s)
	}
	return t, nil
}

func formatIST(t time.Time) string {
	return t.In(istZone).Format("03:04 PM")
}
