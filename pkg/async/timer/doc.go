// Package timer posts jobs to a scheduler when they become due.
//
// Entries fire once (After, At), on a fixed interval (Every) or on a cron
// schedule (Cron). A ticker collects due entries every TickInterval and hands
// their functions to the configured scheduler; repeating entries are re-armed
// for their next run.
//
//	tm, err := timer.New(timer.Config{Scheduler: s})
//	if err != nil {
//		return err
//	}
//	tm.Every("heartbeat", func() { log.Println("alive") }, time.Second)
//	tm.Cron("report", "0 */5 * * * *", sendReport)
//
//	tm.Start()
//	defer func() { <-tm.Stop() }()
//
// Cron expressions take six fields, seconds first, and the descriptors
// understood by github.com/robfig/cron/v3 such as "@every 5m".
package timer
