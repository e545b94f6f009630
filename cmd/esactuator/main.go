// Command esactuator runs an application whose only job is to report the health of an
// Elasticsearch cluster over HTTP.
//
// Configuration is read from a YAML file, a .env file and the environment, in that
// order; later sources win.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/GoCodeAlone/actuator"
	"github.com/GoCodeAlone/actuator/feeders"
	"github.com/GoCodeAlone/actuator/modules/elasticsearch"
	"github.com/GoCodeAlone/actuator/modules/endpoint"
	"github.com/GoCodeAlone/actuator/modules/eshealth"
)

func main() {
	flags := pflag.NewFlagSet("esactuator", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "config.yaml", "YAML configuration file")
	envPath := flags.String("env-file", ".env", "dotenv file")
	envPrefix := flags.String("env-prefix", "", "prefix for environment variable names")
	logLevel := flags.String("log-level", "info", "log level (debug, info, warn, error)")
	_ = flags.Parse(os.Args[1:])

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))

	app, err := actuator.NewApplication(
		actuator.WithLogger(logger),
		actuator.WithConfigFeeders(configFeeders(*configPath, *envPath, *envPrefix)...),
		actuator.WithModules(
			elasticsearch.NewClientModule(),
			eshealth.NewModule(),
			endpoint.NewModule(),
		),
	)
	if err != nil {
		logger.Error("Failed to create application", "error", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		app.Logger().Error("Application error", "error", err)
		os.Exit(1)
	}
}

// configFeeders returns the feeders for the files that exist, followed by the
// environment.
func configFeeders(configPath, envPath, envPrefix string) []actuator.Feeder {
	var fs []actuator.Feeder
	if fileExists(configPath) {
		switch {
		case strings.HasSuffix(configPath, ".toml"):
			fs = append(fs, feeders.NewTomlFeeder(configPath))
		default:
			fs = append(fs, feeders.NewYamlFeeder(configPath))
		}
	}
	if fileExists(envPath) {
		fs = append(fs, feeders.NewDotEnvFeeder(envPath))
	}
	return append(fs, feeders.NewPrefixedEnvFeeder(envPrefix))
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		fmt.Fprintf(os.Stderr, "unknown log level %q, using info\n", level)
		return slog.LevelInfo
	}
	return l
}
