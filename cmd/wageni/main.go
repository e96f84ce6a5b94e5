package main

import (
	_ "embed"
	"strings"

	"go.uber.org/zap"

	"github.com/mzizi/wageni/internal/cli"
	"github.com/mzizi/wageni/internal/logging"
)

//go:embed VERSION
var versionFile string

//go:embed dashboard.html
var dashboardHTML []byte

//go:embed assets/wageni.js
var trackerScript []byte

var executeCLI = cli.Execute

func run() error {
	version := strings.TrimSpace(versionFile)
	return executeCLI(version, dashboardHTML, trackerScript)
}

func main() {
	if err := run(); err != nil {
		logging.Fatal("wageni execution failed", zap.Error(err))
	}
}
