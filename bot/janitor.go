package bot

import (
	"time"

	"confessions/observability"
	"confessions/relay"
	"confessions/throttle"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// registerJanitor drops expired reply sessions and stale throttle records
// once a minute.
func registerJanitor(c *cron.Cron, r *relay.Relay, guard *throttle.Guard, log zerolog.Logger) (cron.EntryID, error) {
	log = log.With().Str("component", "janitor").Logger()
	job := cron.NewChain(
		cron.Recover(observability.CronLogger(log)),
		cron.SkipIfStillRunning(observability.CronLogger(log)),
	).Then(cron.FuncJob(func() {
		sweep(r, guard, time.Now(), log)
	}))
	return c.AddJob("@every 1m", job)
}

func sweep(r *relay.Relay, guard *throttle.Guard, now time.Time, log zerolog.Logger) {
	sessions := r.Expire(now)
	records := guard.Sweep(now)
	if sessions > 0 || records > 0 {
		log.Debug().Int("sessions", sessions).Int("records", records).Msg("expired entries dropped")
	}
}
