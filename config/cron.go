package config

// Map of job names to job functions
type CronJob struct {
	Schedule string
	Job      func(...string)
}

// CronJobs holds statically configured jobs. Inventory jobs register
// themselves through cron.Register in cron/jobs (they need config for DB
// access, so listing them here would be an import cycle).
var CronJobs = map[string]CronJob{
	// Add more jobs here
}
