package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	pkg "github.com/callspace/conferencing/pkg/internal"
	"github.com/callspace/conferencing/pkg/internal/cache"
	"github.com/callspace/conferencing/pkg/internal/database"
	"github.com/callspace/conferencing/pkg/internal/server"
	"github.com/callspace/conferencing/pkg/internal/services"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	color.Cyan("Callspace v%s", pkg.AppVersion)

	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}

	// Connect to database
	if err := database.NewSource(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when connect to database.")
	} else if err := database.RunMigration(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
	}

	// Initialize cache
	if err := cache.NewCache(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when initializing cache.")
	}

	// Call coordinator, providers config and the cluster listener bus
	if err := services.SetupServices(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when setting up services.")
	}

	// Records of calls that outlived their clients are cleared before
	// serving, so nobody reconnects into a ghost call.
	services.SweepStaleCalls()

	// Server
	server.NewServer()
	go server.Listen()

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc("@every 60m", services.SweepStaleCalls)
	quartz.Start()

	// Messages
	log.Info().Msgf("Callspace v%s is started...", pkg.AppVersion)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msgf("Callspace v%s is quitting...", pkg.AppVersion)

	quartz.Stop()
	services.Bus.Stop()
	services.Notices.Stop()
}
