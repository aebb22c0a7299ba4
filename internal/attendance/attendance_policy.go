package attendance

import (
	"time"

	attendanceerrors "dayflow-hrms/internal/attendance/errors"
	"dayflow-hrms/internal/config"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Policy holds the thresholds used to derive lateness, early departure,
// worked hours and overtime. Clock cutoffs are offsets from local midnight.
type Policy struct {
	Location      *time.Location
	LateCutoff    time.Duration
	EarlyCutoff   time.Duration
	StandardHours decimal.Decimal
}

var nanosPerHour = decimal.NewFromInt(int64(time.Hour))

func DefaultPolicy() Policy {
	return Policy{
		Location:      time.UTC,
		LateCutoff:    9 * time.Hour,
		EarlyCutoff:   18 * time.Hour,
		StandardHours: decimal.NewFromInt(8),
	}
}

func NewPolicy(cfg config.AttendanceConfig, loc *time.Location) (Policy, error) {
	late, err := config.ParseClock(cfg.LateCutoff)
	if err != nil {
		return Policy{}, err
	}
	early, err := config.ParseClock(cfg.EarlyDepartureCutoff)
	if err != nil {
		return Policy{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return Policy{
		Location:      loc,
		LateCutoff:    late,
		EarlyCutoff:   early,
		StandardHours: decimal.NewFromFloat(cfg.StandardHours),
	}, nil
}

func (p Policy) clockOf(t time.Time) time.Duration {
	local := t.In(p.Location)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, p.Location)
	return local.Sub(midnight)
}

// DateOf returns the calendar date of t in the policy location, as a UTC
// midnight value suitable for the date column.
func (p Policy) DateOf(t time.Time) time.Time {
	local := t.In(p.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// At combines a calendar date with a clock offset in the policy location.
func (p Policy) At(date time.Time, clock time.Duration) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, p.Location).Add(clock)
}

func (p Policy) IsLate(checkIn time.Time) bool {
	return p.clockOf(checkIn) > p.LateCutoff
}

func (p Policy) IsEarlyDeparture(checkOut time.Time) bool {
	return p.clockOf(checkOut) < p.EarlyCutoff
}

// ComputeHours returns worked hours and overtime, both rounded to two
// places. A check-out before check-in is rejected.
func (p Policy) ComputeHours(checkIn, checkOut time.Time) (working, overtime decimal.Decimal, err error) {
	if checkOut.Before(checkIn) {
		return decimal.Zero, decimal.Zero, attendanceerrors.ErrCheckOutBeforeCheckIn
	}

	hours := decimal.NewFromInt(int64(checkOut.Sub(checkIn))).Div(nanosPerHour)
	working = hours.Round(2)

	overtime = hours.Sub(p.StandardHours)
	if overtime.IsNegative() {
		overtime = decimal.Zero
	}
	return working, overtime.Round(2), nil
}

// Apply recomputes every derived field of r from its time fields. Fields
// whose inputs are missing are cleared.
func (p Policy) Apply(r *Record) error {
	r.IsLate = r.CheckInTime != nil && p.IsLate(*r.CheckInTime)
	r.IsEarlyDeparture = r.CheckOutTime != nil && p.IsEarlyDeparture(*r.CheckOutTime)

	r.WorkingHours = decimal.NullDecimal{}
	r.OvertimeHours = decimal.NullDecimal{}
	if r.CheckInTime == nil || r.CheckOutTime == nil {
		return nil
	}

	working, overtime, err := p.ComputeHours(*r.CheckInTime, *r.CheckOutTime)
	if err != nil {
		return err
	}
	r.WorkingHours = decimal.NewNullDecimal(working)
	r.OvertimeHours = decimal.NewNullDecimal(overtime)
	return nil
}

// Correct builds the record a correction should persist. With no existing
// record it starts a PRESENT one carrying the requested times; otherwise only
// the requested (non-nil) times overwrite the stored ones. It reports whether
// the record is new.
func (p Policy) Correct(existing *Record, employeeID uuid.UUID, date time.Time, checkIn, checkOut *time.Time) (*Record, bool, error) {
	created := existing == nil
	r := existing
	if created {
		r = &Record{
			ID:         uuid.New(),
			EmployeeID: employeeID,
			Date:       date,
			Status:     StatusPresent,
		}
	}
	if checkIn != nil {
		v := *checkIn
		r.CheckInTime = &v
	}
	if checkOut != nil {
		v := *checkOut
		r.CheckOutTime = &v
	}
	if err := p.Apply(r); err != nil {
		return nil, created, err
	}
	return r, created, nil
}
