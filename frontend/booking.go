package frontend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	pipelinex "github.com/tanpawarit/crew-assistants/agent/pipeline"
)

const (
	DateLayout = "2006-01-02"
	isoLayout  = "2006-01-02T15:04:05-07:00"
)

var (
	ErrMissingField    = errors.New("required field is empty")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidTime     = errors.New("invalid time")
	ErrNonexistentTime = errors.New("local time does not exist")
)

var userMessages = map[error]string{
	ErrMissingField:    "Please fill in all required fields.",
	ErrInvalidDate:     "Invalid date format. Please use YYYY-MM-DD.",
	ErrInvalidTime:     "Invalid time format. Please use HH:MM (e.g., 09:00).",
	ErrNonexistentTime: "That time does not exist on the chosen date (daylight saving change). Please pick another time.",
}

// Message returns the text shown to a user for a booking input error.
func Message(err error) string {
	for sentinel, msg := range userMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return "Invalid input."
}

// Runner is the pipeline entry point a front end drives.
type Runner interface {
	Run(ctx context.Context, kickoff string) (pipelinex.Result, error)
}

// BookingForm is the raw appointment request collected from a user.
type BookingForm struct {
	PatientName string
	Reason      string
	Date        string
	Time        string
	Specialty   string
}

// Kickoff validates the form and formats it as the scheduler's kickoff text.
func (f BookingForm) Kickoff(loc *time.Location) (string, error) {
	name := strings.TrimSpace(f.PatientName)
	reason := strings.TrimSpace(f.Reason)
	specialty := strings.TrimSpace(f.Specialty)
	if name == "" || reason == "" || specialty == "" || strings.TrimSpace(f.Date) == "" || strings.TrimSpace(f.Time) == "" {
		return "", ErrMissingField
	}

	at, err := Combine(f.Date, f.Time, loc)
	if err != nil {
		return "", err
	}
	return FormatKickoff(name, reason, at, specialty), nil
}

// Combine joins a date and a clock time in loc. Wall times skipped by a
// daylight saving jump are rejected rather than shifted.
func Combine(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}

	at := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
	if at.Day() != day.Day() || at.Hour() != hour || at.Minute() != minute {
		return time.Time{}, fmt.Errorf("%w: %s %s in %s", ErrNonexistentTime, date, clock, loc)
	}
	return at, nil
}

func FormatKickoff(name, reason string, at time.Time, specialty string) string {
	return fmt.Sprintf(
		"Patient Name: %s\nReason for Visit: %s\nPreferred Appointment Date/Time: %s\nPreferred Doctor Specialty: %s",
		name, reason, at.Format(isoLayout), specialty,
	)
}

func ParseDate(raw string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// ParseClock accepts H:MM or HH:MM with hour 0-23 and minute 0-59.
func ParseClock(raw string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return 0, 0, ErrInvalidTime
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, ErrInvalidTime
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidTime
	}
	return hour, minute, nil
}
