package config

import "github.com/robfig/cron/v3"

// ScheduleParser accepts standard five-field crontab entries, the same with
// a leading seconds field, and descriptors such as @hourly.
var ScheduleParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
