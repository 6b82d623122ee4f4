package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ScheduleTarget is a wall-clock time of day with minute granularity.
type ScheduleTarget struct {
	Hour   int
	Minute int
}

// ParseTarget parses a zero-padded 24-hour "HH:MM" string.
func ParseTarget(value string) (ScheduleTarget, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return ScheduleTarget{}, &ValidationError{Field: "time", Reason: "please enter time in HH:MM format"}
	}

	fields := strings.Split(value, ":")
	if len(fields) != 2 || !isTwoDigits(fields[0]) || !isTwoDigits(fields[1]) {
		return ScheduleTarget{}, &ValidationError{Field: "time", Reason: fmt.Sprintf("%q is not in HH:MM format (24-hour)", value)}
	}

	hour, err := strconv.Atoi(fields[0])
	if err != nil {
		return ScheduleTarget{}, &ValidationError{Field: "time", Reason: fmt.Sprintf("parse hour: %v", err)}
	}
	minute, err := strconv.Atoi(fields[1])
	if err != nil {
		return ScheduleTarget{}, &ValidationError{Field: "time", Reason: fmt.Sprintf("parse minute: %v", err)}
	}

	target := ScheduleTarget{Hour: hour, Minute: minute}
	if err := target.Validate(); err != nil {
		return ScheduleTarget{}, err
	}
	return target, nil
}

// Validate checks hour and minute ranges.
func (target ScheduleTarget) Validate() error {
	if target.Hour < 0 || target.Hour > 23 {
		return &ValidationError{Field: "time", Reason: fmt.Sprintf("hour %d out of range 0-23", target.Hour)}
	}
	if target.Minute < 0 || target.Minute > 59 {
		return &ValidationError{Field: "time", Reason: fmt.Sprintf("minute %d out of range 0-59", target.Minute)}
	}
	return nil
}

// Matches reports whether now falls inside the target minute.
func (target ScheduleTarget) Matches(now time.Time) bool {
	return now.Hour() == target.Hour && now.Minute() == target.Minute
}

// CronExpr returns the daily five-field cron expression for the target.
func (target ScheduleTarget) CronExpr() string {
	return fmt.Sprintf("%d %d * * *", target.Minute, target.Hour)
}

func (target ScheduleTarget) String() string {
	return fmt.Sprintf("%02d:%02d", target.Hour, target.Minute)
}

func isTwoDigits(field string) bool {
	if len(field) != 2 {
		return false
	}
	for _, char := range field {
		if char < '0' || char > '9' {
			return false
		}
	}
	return true
}
