package main

import (
	"bytes"
	"context"
	"net/http"
	"os"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"

	"github.com/notework/timekeeper/internal/pkg/application/reminders"
	"github.com/notework/timekeeper/internal/pkg/application/timesheet"
	"github.com/notework/timekeeper/internal/pkg/infrastructure/router"
	"github.com/notework/timekeeper/internal/pkg/infrastructure/scheduler"
	"github.com/notework/timekeeper/internal/pkg/presentation/api"
	"github.com/notework/timekeeper/pkg/notion/client"
)

const appName string = "timekeeper"

func main() {
	appVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), appName, appVersion, "json")
	defer cleanup()

	token := os.Getenv("WORKSPACE_TOKEN")
	if token == "" {
		log.Error("no bearer token in WORKSPACE_TOKEN")
		os.Exit(1)
	}

	configPath := env.GetVariableOrDefault(ctx, "TIMEKEEPER_CONFIG_PATH", "/opt/timekeeper/config.yaml")
	schedulerURL := env.GetVariableOrDefault(ctx, "SCHEDULER_URL", "http://scheduler:8080")
	port := env.GetVariableOrDefault(ctx, "SERVICE_PORT", "8080")

	configData, err := os.ReadFile(configPath)
	if err != nil {
		log.Error("failed to read configuration", "path", configPath, "err", err.Error())
		os.Exit(1)
	}

	timesheetCfg, err := timesheet.LoadConfiguration(bytes.NewReader(configData))
	if err != nil {
		log.Error("invalid timesheet configuration", "err", err.Error())
		os.Exit(1)
	}

	reminderCfg, err := reminders.LoadConfiguration(bytes.NewReader(configData))
	if err != nil {
		log.Error("invalid reminder configuration", "err", err.Error())
		os.Exit(1)
	}

	c := client.New(token,
		client.APIVersion(env.GetVariableOrDefault(ctx, "WORKSPACE_API_VERSION", client.DefaultAPIVersion)),
		client.Debug(env.GetVariableOrDefault(ctx, "WORKSPACE_DEBUG", "false")),
	)

	app, err := timesheet.New(c, timesheetCfg)
	if err != nil {
		log.Error("failed to set up the timesheet service", "err", err.Error())
		os.Exit(1)
	}

	svc, err := reminders.New(c, scheduler.New(schedulerURL), reminderCfg)
	if err != nil {
		log.Error("failed to set up the reminder service", "err", err.Error())
		os.Exit(1)
	}

	r := router.New(appName)
	api.RegisterHandlers(r, app, svc)

	log.Info("starting to listen for connections", "port", port)

	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Error("failed to listen for connections", "err", err.Error())
		os.Exit(1)
	}
}
