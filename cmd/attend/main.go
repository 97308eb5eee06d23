package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"attend-go/internal/app"
	"attend-go/internal/attend"
	"attend-go/internal/config"
	"attend-go/internal/httpapi"
	"attend-go/internal/model"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Record", "Serve").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "attend",
	Short: "Student attendance tracker",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:  %s\n", cfg.LogDir)
		fmt.Printf("Timezone: %s\n", cfg.Timezone)
		fmt.Printf("Database: %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Server:   %s\n", cfg.Server.Addr)
		return nil
	},
}

// record command
var recordCmd = &cobra.Command{
	Use:   "record NAME",
	Short: "Record attendance for a student",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		source, _ := cmd.Flags().GetString("source")

		a, err := newApp("Record")
		if err != nil {
			return err
		}
		defer a.Close()

		outcome, err := a.Record(args[0], status, source)
		if err != nil {
			return fmt.Errorf("recording attendance: %w", err)
		}

		switch outcome {
		case attend.RecordAccepted:
			fmt.Printf("Recorded %s for %s\n", status, args[0])
		case attend.RecordDuplicate:
			fmt.Printf("Attendance already logged for %s today (%s)\n", args[0], source)
		}
		return nil
	},
}

// stats command
var statsCmd = &cobra.Command{
	Use:   "stats [NAME]",
	Short: "View attendance statistics",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Stats")
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			stats, err := a.StudentStats(args[0])
			if err != nil {
				return err
			}
			printStats(stats)
			return nil
		}

		all, err := a.AllStudentsStats()
		if err != nil {
			return err
		}
		average, err := a.ClassAverage()
		if err != nil {
			return err
		}

		if len(all) == 0 {
			fmt.Println("No students registered.")
			return nil
		}
		for _, st := range all {
			fmt.Printf("%-20s %3d/%3d days  %6.2f%%  streak:%d  late:%d\n",
				st.StudentName, st.PresentDays, st.TotalDays,
				st.AttendancePercentage, st.CurrentStreak, st.LateArrivals)
		}
		fmt.Printf("\nClass average: %.2f%%\n", average)
		return nil
	},
}

func printStats(st *model.Stats) {
	fmt.Printf("Student:    %s\n", st.StudentName)
	fmt.Printf("Present:    %d of %d days (%.2f%%)\n", st.PresentDays, st.TotalDays, st.AttendancePercentage)
	fmt.Printf("Streak:     %d\n", st.CurrentStreak)
	fmt.Printf("Late:       %d\n", st.LateArrivals)
	if len(st.MonthlyData) > 0 {
		fmt.Println("\nMonthly:")
		for _, b := range st.MonthlyData {
			fmt.Printf("  %s  %d present / %d events\n", b.Month, b.PresentEvents, b.TotalEvents)
		}
	}
	if len(st.WeeklyData) > 0 {
		fmt.Println("\nWeekly (last 12 weeks):")
		for _, b := range st.WeeklyData {
			fmt.Printf("  %s  %d present / %d events\n", b.Week, b.PresentEvents, b.TotalEvents)
		}
	}
}

// summary command
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "View the class-wide daily summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Summary")
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.DailySummary()
		if err != nil {
			return err
		}

		fmt.Printf("Students:        %d\n", s.TotalStudents)
		fmt.Printf("Present days:    %d of %d (%.2f%%)\n", s.TotalPresentDays, s.TotalDays, s.OverallPercentage)
		fmt.Printf("Class average:   %.2f%%\n", s.ClassAverage)
		fmt.Println("\nToday:")
		for _, e := range s.TodayAttendance {
			mark := "absent"
			when := ""
			if e.Present {
				mark = "present"
			}
			if e.LastMarkedTime != nil {
				when = e.LastMarkedTime.Format("15:04")
			}
			fmt.Printf("  %-20s %-8s %s\n", e.StudentName, mark, when)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history [NAME]",
	Short: "View attendance history",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		a, err := newApp("History")
		if err != nil {
			return err
		}
		defer a.Close()

		name := ""
		if len(args) == 1 {
			name = args[0]
		}

		entries, err := a.History(name, days)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No attendance recorded in window.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %-20s %-8s %s\n",
				e.Timestamp.Format("2006-01-02 15:04:05"), e.StudentName, e.Status, e.Source)
		}
		return nil
	},
}

// students command
var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "List registered students",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListStudents")
		if err != nil {
			return err
		}
		defer a.Close()

		names, err := a.ListStudents()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No students registered.")
			return nil
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

// trends command
var trendsCmd = &cobra.Command{
	Use:   "trends NAME",
	Short: "View chart-ready trend series for a student",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Trends")
		if err != nil {
			return err
		}
		defer a.Close()

		t, err := a.Trends(args[0])
		if err != nil {
			return err
		}

		fmt.Println("Monthly:")
		for i, label := range t.Monthly.Labels {
			fmt.Printf("  %s  %d\n", label, t.Monthly.Values[i])
		}
		fmt.Println("Weekly:")
		for i, label := range t.Weekly.Labels {
			fmt.Printf("  %s  %d\n", label, t.Weekly.Values[i])
		}
		return nil
	},
}

// seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the store with sample attendance data",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		a, err := newApp("Seed")
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.SeedSampleData(days)
		if err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
		fmt.Printf("Seeded %d event(s)\n", count)
		return nil
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the attendance HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Serve")
		if err != nil {
			return err
		}
		defer a.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = a.Config().Server.Addr
		}

		h := httpapi.NewHandler(a.Service(), a.Clock(), a.Logger())
		srv := httpapi.NewServer(addr, httpapi.NewRouter(h))
		return httpapi.Run(srv, a.Logger())
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the event store",
}

var dbBackupCmd = &cobra.Command{
	Use:   "backup PATH",
	Short: "Snapshot the store to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("BackupTo")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.BackupTo(args[0]); err != nil {
			return err
		}
		fmt.Printf("Store backed up to %s\n", args[0])
		return nil
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check store schema status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("CheckMigrations")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.CheckMigrations(); err != nil {
			return err
		}
		fmt.Println("Schema is up to date.")
		return nil
	},
}

var dbSetTimeCmd = &cobra.Command{
	Use:   "set-time EVENT_ID TIMESTAMP",
	Short: "Rewrite an event's timestamp (administrative override)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ts, err := time.Parse(time.RFC3339, args[1])
		if err != nil {
			return errors.New("timestamp must be RFC3339, e.g. 2026-09-01T08:30:00Z")
		}

		a, err := newApp("CorrectEventTimestamp")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.CorrectEventTimestamp(args[0], ts); err != nil {
			return err
		}
		fmt.Printf("Event %s moved to %s\n", args[0], ts.Format(time.RFC3339))
		return nil
	},
}

func init() {
	recordCmd.Flags().String("status", model.StatusPresent, "event status (present, absent, ...)")
	recordCmd.Flags().String("source", model.SourceManual, "event source (manual, automatic)")
	historyCmd.Flags().Int("days", 30, "window in days")
	seedCmd.Flags().Int("days", 14, "days of sample history")
	serveCmd.Flags().String("addr", "", "listen address (overrides config)")

	configCmd.AddCommand(configInitCmd, configListCmd)
	dbCmd.AddCommand(dbBackupCmd, dbStatusCmd, dbSetTimeCmd)
	rootCmd.AddCommand(configCmd, recordCmd, statsCmd, summaryCmd, historyCmd,
		studentsCmd, trendsCmd, seedCmd, serveCmd, dbCmd)
}
