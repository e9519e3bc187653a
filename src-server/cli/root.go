package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"calman/src-server/calendar"
	"calman/src-server/ical"
	"calman/src-server/timezone"

	"github.com/spf13/cobra"
)

var ErrInvalidZones = errors.New("some timezones are invalid")

// NewRootCmd builds the command tree. serve runs the HTTP host and is also
// what a bare invocation does.
func NewRootCmd(serve func(cmd *cobra.Command) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "calman",
		Short:        "Calendar manager: HTTP API and agenda tools",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the HTTP API (same as: calman serve)
  calman

  # Print a week of an exported calendar in Berlin time
  calman agenda --ics work.ics --tz Europe/Berlin --from 2024-06-03 --to 2024-06-09
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd)
		},
	})
	cmd.AddCommand(newAgendaCmd())
	cmd.AddCommand(newZonesCmd())
	return cmd
}

func newAgendaCmd() *cobra.Command {
	var (
		icsPath string
		tz      string
		from    string
		to      string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Print the events of an ICS file between two dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// #region - parse flags
			fromDate, err := calendar.ParseCivil(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			toDate := fromDate
			if to != "" {
				if toDate, err = calendar.ParseCivil(to); err != nil {
					return fmt.Errorf("--to: %w", err)
				}
			}
			f, err := os.Open(icsPath)
			if err != nil {
				return err
			}
			defer f.Close()
			// #endregion

			cal, err := calendar.NewManager().CreateCalendar("agenda", tz)
			if err != nil {
				return err
			}
			result, err := ical.Import(f, cal, calendar.ConflictAllow)
			if err != nil {
				return err
			}
			for _, skipped := range result.Skipped {
				fmt.Fprintln(cmd.ErrOrStderr(), "skipped:", skipped.Error())
			}
			return RenderAgenda(cmd.OutOrStdout(), cal.GetEventsInRange(fromDate, toDate), cal.Location(), output)
		},
	}

	cmd.Flags().StringVar(&icsPath, "ics", "", "ICS file to read")
	cmd.Flags().StringVar(&tz, "tz", "UTC", "IANA timezone the agenda is shown in")
	cmd.Flags().StringVar(&from, "from", "", "First date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "Last date, YYYY-MM-DD (default: --from)")
	cmd.Flags().StringVarP(&output, "output", "o", FormatText, "Output format (text|yaml|json)")
	_ = cmd.MarkFlagRequired("ics")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func newZonesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "zones ZONE...",
		Short: "Check timezone names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			converter := timezone.NewConverter()
			invalid := 0
			for _, zone := range args {
				loc, err := converter.Location(zone)
				if err != nil {
					invalid++
					fmt.Fprintf(cmd.OutOrStdout(), "%s\tinvalid\n", zone)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tok\t%s\n", zone, time.Now().In(loc).Format("-07:00"))
			}
			if invalid > 0 {
				return fmt.Errorf("%w: %d of %d", ErrInvalidZones, invalid, len(args))
			}
			return nil
		},
	}
}
