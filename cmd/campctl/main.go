package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/discope/camps/internal/db"
	"github.com/discope/camps/internal/models"
	"github.com/discope/camps/internal/services"
)

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "campctl",
	Short: "campctl - camp enrollment back-office",
	Long: `campctl drives the camp enrollment core: create enrollments,
move them through their workflow, and inspect camp capacity.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		services.Log = logger

		return db.Init()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Create a pending enrollment",
	RunE: func(cmd *cobra.Command, args []string) error {
		childID, _ := cmd.Flags().GetUint("child")
		campID, _ := cmd.Flags().GetUint("camp")
		quotient, _ := cmd.Flags().GetInt("quotient")
		isAse, _ := cmd.Flags().GetBool("ase")
		days, _ := cmd.Flags().GetString("days")
		daycare, _ := cmd.Flags().GetString("daycare")

		in := services.EnrollmentInput{
			ChildID:        childID,
			CampID:         campID,
			FamilyQuotient: quotient,
			IsAse:          isAse,
			PresenceDays:   parseDays(days),
			DaycareDays:    parseDays(daycare),
		}
		enr, err := services.CreateEnrollment(db.Conn(), in)
		if err != nil {
			return rejectionErr(err)
		}
		fmt.Printf("enrollment %s created (status %s, total %s)\n", enr.Code, enr.Status, enr.Total)
		return nil
	},
}

var confirmCmd = &cobra.Command{
	Use:   "confirm <code>",
	Short: "Confirm a pending enrollment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enr, err := findByCode(args[0])
		if err != nil {
			return err
		}
		if err := services.ConfirmEnrollment(db.Conn(), enr.ID); err != nil {
			return rejectionErr(err)
		}
		fmt.Printf("enrollment %s confirmed\n", enr.Code)
		return nil
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <code>",
	Short: "Cancel an enrollment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := services.CancelByCode(db.Conn(), args[0]); err != nil {
			return rejectionErr(err)
		}
		fmt.Printf("enrollment %s canceled\n", args[0])
		return nil
	},
}

var waitlistCmd = &cobra.Command{
	Use:   "waitlist <code>",
	Short: "Park a pending enrollment on the waitlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enr, err := findByCode(args[0])
		if err != nil {
			return err
		}
		if err := services.WaitlistEnrollment(db.Conn(), enr.ID); err != nil {
			return rejectionErr(err)
		}
		fmt.Printf("enrollment %s waitlisted\n", enr.Code)
		return nil
	},
}

var releaseCmd = &cobra.Command{
	Use:   "release <code>",
	Short: "Move a waitlisted enrollment back to pending",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enr, err := findByCode(args[0])
		if err != nil {
			return err
		}
		if err := services.ReleaseFromWaitlist(db.Conn(), enr.ID); err != nil {
			return rejectionErr(err)
		}
		fmt.Printf("enrollment %s released from waitlist\n", enr.Code)
		return nil
	},
}

var capacityCmd = &cobra.Command{
	Use:   "capacity",
	Short: "Show per-camp occupancy",
	RunE: func(cmd *cobra.Command, args []string) error {
		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")

		now := time.Now()
		from := parseDate(fromStr, now.AddDate(0, 0, -30))
		to := parseDate(toStr, now.AddDate(0, 0, 90))

		rows, err := services.CapacityReport(db.Conn(), from, to)
		if err != nil {
			return err
		}
		fmt.Printf("%-6s %-24s %-12s %5s %8s %10s %5s %6s\n",
			"ID", "CAMP", "START", "MAX", "PENDING", "CONFIRMED", "ASE", "FILL")
		for _, r := range rows {
			fmt.Printf("%-6d %-24s %-12s %5d %8d %10d %5d %5d%%\n",
				r.CampID, r.Name, r.DateFrom.Format("2006-01-02"),
				r.MaxChildren, r.Pending, r.Confirmed, r.Ase, r.FillPercent)
		}
		return nil
	},
}

var qrCmd = &cobra.Command{
	Use:   "qr <code>",
	Short: "Render an enrollment code as a QR PNG for on-site check-in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		enr, err := findByCode(args[0])
		if err != nil {
			return err
		}
		if out == "" {
			out = enr.Code + ".png"
		}
		if err := qrcode.WriteFile(enr.Code, qrcode.Medium, 256, out); err != nil {
			return fmt.Errorf("failed to generate qr: %w", err)
		}
		fmt.Printf("wrote %s\n", out)
		return nil
	},
}

func findByCode(code string) (*models.Enrollment, error) {
	var enr models.Enrollment
	if err := db.Conn().Where("code = ?", code).First(&enr).Error; err != nil {
		return nil, fmt.Errorf("enrollment %q not found", code)
	}
	return &enr, nil
}

// rejectionErr turns a business rejection into a flat CLI error line.
func rejectionErr(err error) error {
	if r, ok := services.AsRejection(err); ok {
		return fmt.Errorf("rejected [%s.%s]: %s", r.Field, r.Code, r.Message)
	}
	return err
}

// parseDays turns "1,3,5" into the five-day selection array.
func parseDays(s string) [5]bool {
	var out [5]bool
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err == nil && n >= 1 && n <= 5 {
			out[n-1] = true
		}
	}
	return out
}

func parseDate(s string, def time.Time) time.Time {
	if s == "" {
		return def
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return def
	}
	return t
}

func main() {
	enrollCmd.Flags().Uint("child", 0, "child id")
	enrollCmd.Flags().Uint("camp", 0, "camp id")
	enrollCmd.Flags().Int("quotient", 0, "family quotient (CLSH pricing)")
	enrollCmd.Flags().Bool("ase", false, "count against the ASE quota")
	enrollCmd.Flags().String("days", "", "CLSH presence days, e.g. 1,2,4")
	enrollCmd.Flags().String("daycare", "", "CLSH daycare days, e.g. 1,2")

	capacityCmd.Flags().String("from", "", "window start (YYYY-MM-DD)")
	capacityCmd.Flags().String("to", "", "window end (YYYY-MM-DD)")

	qrCmd.Flags().String("out", "", "output PNG path")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(enrollCmd, confirmCmd, cancelCmd, waitlistCmd, releaseCmd, capacityCmd, qrCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
