package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"festcal/internal/clock"
	"festcal/internal/config"
	"festcal/internal/export"
	"festcal/internal/ics"
	"festcal/internal/lineup"
	appLog "festcal/internal/log"
	"festcal/internal/metrics"
	"festcal/internal/model"
	"festcal/internal/palette"
	"festcal/internal/schedule"
	"festcal/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	envPath    string
	listen     string
	schedule   string
	once       bool
	exportICS  string
	exportXLSX string
}

func main() {
	if err := run(); err != nil {
		appLog.Error("festcal failed", err)
		os.Exit(1)
	}
}

func run() error {
	flags := parseFlags()

	if err := config.LoadEnv(flags.envPath); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", flags.configPath, err)
	}
	conf.ApplyEnv()

	// CLI flags win over file and environment.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.schedule != "" {
		conf.Schedule = flags.schedule
	}

	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	appLog.Info("festcal starting", "version", "0.1.0")

	loc, err := conf.Location()
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err)
	}
	format, err := lineup.ParseFormat(conf.ScheduleFormat)
	if err != nil {
		return err
	}
	stageColors, err := conf.StageColors()
	if err != nil {
		return err
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", loc.String(),
		"schedule", conf.Schedule,
		"schedule_format", string(format),
		"tick", conf.Tick,
		"stage_colors", len(stageColors),
		"once", flags.once,
	)

	// The lineup is loaded once and is read-only for the rest of the run.
	days, err := lineup.Load(lineup.Source{Path: conf.Schedule, Format: format, Location: loc})
	if err != nil {
		return err
	}

	if flags.exportICS != "" || flags.exportXLSX != "" {
		return runExports(days, stageColors, flags)
	}

	if flags.once {
		return printStatus(time.Now().In(loc), days)
	}

	met := metrics.New()
	met.SetLineup(len(days), lineup.CountSets(days))

	clk, err := clock.New(conf.Tick, days, loc, clock.WithMetrics(met))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk.Start(ctx)

	srv := web.NewServer(conf, web.Deps{
		Days:        days,
		Clock:       clk,
		StageColors: stageColors,
		Metrics:     met,
	})
	if err := srv.Run(ctx); err != nil {
		return err
	}

	appLog.Info("festcal exiting")
	return nil
}

func runExports(days []model.FestivalDay, colors map[string]palette.Color, flags flagConfig) error {
	if flags.exportICS != "" {
		cal, err := ics.Export(days, ics.ExportOptions{Name: "festcal lineup", StageColors: colors})
		if err != nil {
			return err
		}
		if err := os.WriteFile(flags.exportICS, []byte(cal), 0o644); err != nil {
			return err
		}
		appLog.Info("ics written", "path", flags.exportICS)
	}
	if flags.exportXLSX != "" {
		body, err := export.BuildLineupXLSX(days, colors)
		if err != nil {
			return err
		}
		if err := os.WriteFile(flags.exportXLSX, body, 0o644); err != nil {
			return err
		}
		appLog.Info("xlsx written", "path", flags.exportXLSX)
	}
	return nil
}

// printStatus writes a one-shot summary of what is playing now.
func printStatus(now time.Time, days []model.FestivalDay) error {
	st := schedule.StatusAt(now, days)

	switch st.Phase {
	case schedule.PhaseNone:
		return errors.New("lineup is empty")
	case schedule.PhaseBefore:
		fmt.Printf("The festival is %d days away!\n", st.DaysUntil)
	case schedule.PhaseBetween:
		fmt.Printf("No sets today; next festival day in %d days.\n", st.DaysUntil)
	case schedule.PhaseAfter:
		fmt.Println("Hope you had a fun festival!")
	case schedule.PhaseLive:
		fmt.Printf("Festival day %s\n", st.Day.Key())
		for _, stage := range st.Day.Stages {
			idx := schedule.NowPlaying(stage, st.Day.Date, now)
			if idx < 0 {
				fmt.Printf("  %-20s -\n", stage.Name)
				continue
			}
			start, end, err := schedule.Window(stage, st.Day.Date, idx)
			if err != nil {
				return err
			}
			fmt.Printf("  %-20s %s (%s - %s)\n", stage.Name, stage.SetTimes[idx].Artist,
				start.Format("15:04"), end.Format("15:04"))
		}
	}
	return nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/festcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.envPath, "env", ".env", "Path to .env file with FESTCAL_* overrides")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.schedule, "schedule", "", "Lineup file (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Print the current festival status and exit")
	flag.StringVar(&cfg.exportICS, "export-ics", "", "Write the lineup as iCalendar to this path and exit")
	flag.StringVar(&cfg.exportXLSX, "export-xlsx", "", "Write the lineup as XLSX to this path and exit")

	flag.Parse()

	return cfg
}
