/*
Package schedule provides deferred and recurring task submission on top of a
taskpool.Pool.

Entries fire at an absolute time, after a delay, on a fixed interval, or on
a cron expression (six-field, with seconds). Due entries are handed to the
pool with TrySubmit so a full queue never stalls the tick loop; rejected
one-time entries are retried on the next tick.

	s := schedule.NewWithConfig(schedule.Config{Pool: pool})
	_ = s.Start()

	s.ScheduleAfter("warmup", task, 5*time.Second)
	s.ScheduleRepeating("sync", syncTask, time.Minute)
	s.ScheduleCron("nightly", "0 0 2 * * *", reportTask)

	<-s.Stop()
*/
package schedule
