// Package retention ages decision records out of storage on a cron
// schedule, optionally archiving them to JSON first.
package retention
