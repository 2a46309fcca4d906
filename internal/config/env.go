package config

import (
	"log/slog"
	"os"

	"github.com/subosito/gotenv"
)

const envFileName = ".env"

// initEnvFile loads .env from the working directory when present. Variables
// already set in the environment keep their value.
func initEnvFile() {
	if _, err := os.Stat(envFileName); err != nil {
		return
	}
	if err := gotenv.Load(envFileName); err != nil {
		slog.Warn("load env file", "path", envFileName, "err", err)
	}
}
