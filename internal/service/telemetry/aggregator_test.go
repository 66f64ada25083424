package telemetry

import (
	"testing"
	"time"

	"github.com/alpadrive/fleet-server/internal/domain/model"
)

func speedPtr(n int) *int { return &n }

// TestApplyFoldScenario reproduces spec.md's worked S5 example: a
// vehicle's first sample of the day seeds the baseline and is folded
// into it via the same recurrence as every later sample ("double
// fold"), which is the only model that reproduces distance, max_speed,
// stress and message_count exactly as stated. average_speed comes out
// 42, not the scenario prose's illustrative 43, since the actual
// recurrence does integer division where the prose silently used a
// plain mean; see DESIGN.md.
func TestApplyFoldScenario(t *testing.T) {
	now := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)

	seed := model.Sample{Speed: speedPtr(30), Odo: 100}
	base := model.DailyLog{
		Date:         "29-7-2026",
		LastOdometer: seed.Odo,
		AverageSpeed: *seed.Speed,
		MaxSpeed:     model.MaxSpeed{Value: *seed.Speed, HitAt: formatIST(now)},
	}

	log := applyFold(base, seed, now)
	log = applyFold(log, model.Sample{Speed: speedPtr(50), Stressed: true, Odo: 110}, now)
	log = applyFold(log, model.Sample{Speed: speedPtr(50), Odo: 115}, now)

	if log.Distance != 15 {
		t.Errorf("distance = %d, want 15", log.Distance)
	}
	if log.MessageCount != 4 {
		t.Errorf("message_count = %d, want 4", log.MessageCount)
	}
	if log.MaxSpeed.Value != 50 {
		t.Errorf("max_speed.value = %d, want 50", log.MaxSpeed.Value)
	}
	if log.Stress != 0 {
		t.Errorf("stress = %d, want 0", log.Stress)
	}
	if log.AverageSpeed != 42 {
		t.Errorf("average_speed = %d, want 42", log.AverageSpeed)
	}
}

func TestApplyFoldNoOdoNoDistance(t *testing.T) {
	base := model.DailyLog{LastOdometer: 50}
	log := applyFold(base, model.Sample{Odo: 0}, time.Now())
	if log.Distance != 0 {
		t.Errorf("distance = %d, want 0 when the sample carries no odometer reading", log.Distance)
	}
	if log.LastOdometer != 0 {
		t.Errorf("last_odometer = %d, want 0 (the fold always overwrites it)", log.LastOdometer)
	}
}

func TestReduceEmpty(t *testing.T) {
	summary := reduce(nil)
	if summary.DayCount != 0 {
		t.Errorf("day_count = %d, want 0", summary.DayCount)
	}
}

func TestReduceSumsAndMeans(t *testing.T) {
	logs := []model.DailyLog{
		{Distance: 10, Stress: 100, AverageSpeed: 30, MaxSpeed: model.MaxSpeed{Value: 40}, LastOdometer: 200},
		{Distance: 20, Stress: 200, AverageSpeed: 50, MaxSpeed: model.MaxSpeed{Value: 60}, LastOdometer: 260},
	}
	summary := reduce(logs)
	if summary.Distance != 30 {
		t.Errorf("distance = %d, want 30", summary.Distance)
	}
	if summary.StressCount != 300 {
		t.Errorf("stress_count = %d, want 300", summary.StressCount)
	}
	if summary.AverageSpeed != 40 {
		t.Errorf("average_speed = %d, want 40", summary.AverageSpeed)
	}
	if summary.MaxSpeed.Value != 60 {
		t.Errorf("max_speed.value = %d, want 60", summary.MaxSpeed.Value)
	}
	if summary.LastOdometer != 260 {
		t.Errorf("last_odometer = %d, want 260 (the final document scanned)", summary.LastOdometer)
	}
	if summary.DayCount != 2 {
		t.Errorf("day_count = %d, want 2", summary.DayCount)
	}
}

func TestParseLegacyDateRoundTrip(t *testing.T) {
	parsed, err := parseLegacyDate("5-3-2026")
	if err != nil {
		t.Fatalf("parseLegacyDate: %v", err)
	}
	if parsed.Year() != 2026 || parsed.Month() != time.March || parsed.Day() != 5 {
		t.Errorf("parsed = %v, want 2026-03-05", parsed)
	}
}

func TestParseLegacyDateRejectsMalformed(t *testing.T) {
	if _, err := parseLegacyDate("2026-03-05"); err == nil {
		t.Fatal("expected an ISO-shaped date to be rejected by the legacy parser")
	}
}

func TestDateFieldsAggregator(t *testing.T) {
	a := &Aggregator{dateFormat: "legacy"}
	fields := a.dateFields(time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC))
	if fields.date != "5-3-2026" {
		t.Errorf("date = %q, want %q", fields.date, "5-3-2026")
	}
	if fields.dateKey != "2026-03-05" {
		t.Errorf("date_key = %q, want %q", fields.dateKey, "2026-03-05")
	}
}
