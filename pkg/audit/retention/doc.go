// Package retention prunes old audit records, either on demand or on a
// cron schedule in watch mode.
package retention
