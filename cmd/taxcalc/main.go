// Command taxcalc runs the GST, TDS and invoice-numbering calculators from
// the shell without a database.
package main

import (
	"os"

	"supercrm/internal/config"
	"supercrm/internal/logger"
)

func main() {
	_ = logger.Setup(config.LogConfig{Level: "warn", Format: "console"})

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		log := logger.WithComponent("taxcalc")
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
