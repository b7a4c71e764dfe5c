// Package refresh re-runs the last search on a cron schedule so that
// availability shown in the result list does not go stale.
package refresh
