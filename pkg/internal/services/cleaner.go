package services

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// SweepStaleCalls deletes one-on-one calls that saw no activity within the
// retention window. Group calls are kept as the durable room record and
// are only replaced on their next creation.
func SweepStaleCalls() {
	days := viper.GetInt("calling.stale_call_days")
	if days <= 0 {
		days = 1
	}
	before := time.Now().AddDate(0, 0, -days)

	count, err := Calls.store.DeleteStaleUserCalls(before)
	if err != nil {
		log.Error().Err(err).Msg("An error occurred when sweeping stale calls...")
		return
	}
	if count > 0 {
		log.Info().Int64("count", count).Time("before", before).Msg("Stale one-on-one calls swept.")
	}
}
