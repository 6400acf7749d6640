package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/notework/timekeeper/internal/pkg/application/timesheet"
	"github.com/notework/timekeeper/pkg/notion/client"
)

var (
	configFlag string
	dateFlag   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "timectl",
		Short: "Track time from the command line",
		Long: `timectl drives the timekeeper workspace databases directly.

The bearer token is read from WORKSPACE_TOKEN. Database ids come from the
same configuration file the service uses.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", defaultConfigPath(), "path to the service configuration file")

	startCmd := &cobra.Command{
		Use:   "start <category>",
		Short: "Start a timer for a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			timer, err := app.StartTimer(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("started %s: %s\n", timer.Category, timer.URL)
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop <timer-id>",
		Short: "Stop a running timer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			return app.EndTimer(cmd.Context(), args[0])
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List this week's running timers",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			timers, err := app.ActiveTimers(cmd.Context())
			if err != nil {
				return err
			}

			if len(timers) == 0 {
				fmt.Println("no running timers")
				return nil
			}

			for _, t := range timers {
				fmt.Printf("%s\t%.2fh\t%s\n", t.Category, t.Hours, t.PageID)
			}
			return nil
		},
	}

	totalCmd := &cobra.Command{
		Use:   "total",
		Short: "Show the tracked hours for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			date := time.Now()
			if dateFlag != "" {
				if date, err = time.Parse("2006-01-02", dateFlag); err != nil {
					return fmt.Errorf("--date must be formatted like 2006-01-02")
				}
			}

			total, err := app.DailyTotal(cmd.Context(), date)
			if err != nil {
				return err
			}

			fmt.Printf("%s: %.2fh\n", date.Format("2006-01-02"), total)
			return nil
		},
	}
	totalCmd.Flags().StringVar(&dateFlag, "date", "", "day to total, defaults to today")

	weekCmd := &cobra.Command{
		Use:   "week",
		Short: "Show per category hours for the past week",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			report, err := app.WeeklyTotals(cmd.Context())
			if err != nil {
				return err
			}

			for category, hours := range report.Hours {
				fmt.Printf("%s:", category)
				for i, day := range report.Days {
					fmt.Printf("  %s %.2fh", day, hours[i])
				}
				fmt.Println()
			}
			return nil
		},
	}

	rollupCmd := &cobra.Command{
		Use:   "rollup",
		Short: "Create the daily rollup page timers relate to",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			pageID, err := app.CreateDailyRollupPage(cmd.Context(), time.Now())
			if err != nil {
				return err
			}

			fmt.Printf("created rollup page %s\n", pageID)
			return nil
		},
	}

	entriesCmd := &cobra.Command{
		Use:   "entries",
		Short: "Manage the category option list",
	}

	entriesCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List categories",
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := newApp()
				if err != nil {
					return err
				}

				names, err := app.EntryOptions(cmd.Context())
				if err != nil {
					return err
				}

				for _, name := range names {
					fmt.Println(name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add a category",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := newApp()
				if err != nil {
					return err
				}

				return app.AddEntryOption(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "remove <name>",
			Short: "Remove a category",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := newApp()
				if err != nil {
					return err
				}

				return app.RemoveEntryOption(cmd.Context(), args[0])
			},
		},
	)

	rootCmd.AddCommand(startCmd, stopCmd, listCmd, totalCmd, weekCmd, rollupCmd, entriesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	if path := os.Getenv("TIMEKEEPER_CONFIG_PATH"); path != "" {
		return path
	}
	return "/opt/timekeeper/config.yaml"
}

func newApp() (timesheet.Timesheet, error) {
	token := os.Getenv("WORKSPACE_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("no bearer token in WORKSPACE_TOKEN")
	}

	cfgFile, err := os.Open(configFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	defer cfgFile.Close()

	cfg, err := timesheet.LoadConfiguration(cfgFile)
	if err != nil {
		return nil, err
	}

	return timesheet.New(client.New(token), cfg)
}
