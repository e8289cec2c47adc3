// Package retention removes old archive records, by age, by count, or
// both, either on demand or on a cron schedule.
package retention
