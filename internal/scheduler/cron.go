package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultExpr — расписание снапшотов по умолчанию: ежедневно в 03:00.
const DefaultExpr = "0 3 * * *"

// cronParser — парсер стандартных пятипольных cron-выражений (+ @daily и т.п.).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(cronExpr string) error {
	_, err := cronParser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	return nil
}

// NextRun вычисляет следующее время срабатывания после from, в UTC.
func NextRun(cronExpr string, from time.Time) (time.Time, error) {
	schedule, err := cronParser.Parse(cronExpr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron expression %q: %w", cronExpr, err)
	}
	return schedule.Next(from).UTC(), nil
}
