package main

import (
	"github.com/joho/godotenv"
	"github.com/ltlx4/technews/cmd"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Load .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cmd.SetVersionInfo(version, commit, date)
	cmd.Execute()
}
