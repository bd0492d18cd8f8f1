package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func addHolidays(topLevel *cobra.Command, o *Options) {
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "Manage the production calendar.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	load := &cobra.Command{
		Use:   "load <file>",
		Short: "Replace non-working days with the contents of a calendar JSON file.",
		Example: `
absencectl holidays load calendar-2026.json
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := o.open()
			if err != nil {
				return err
			}
			defer s.Close()

			count, err := s.nonWorking.LoadFromJSON(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d non-working days\n", count)
			return err
		},
	}

	month := &cobra.Command{
		Use:   "month <yyyy-mm>",
		Short: "List non-working days of a month.",
		Example: `
absencectl holidays month 2026-02
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			m, err := time.Parse("2006-01", args[0])
			if err != nil {
				return fmt.Errorf("bad month %q, expected yyyy-mm", args[0])
			}
			s, err := o.open()
			if err != nil {
				return err
			}
			defer s.Close()

			days, err := s.nonWorking.GetNonWorkingDaysForMonth(m.Year(), int(m.Month()))
			if err != nil {
				return err
			}

			p := printer{out: cmd.OutOrStdout()}
			p.titleWithCount(m.Format("January 2006"), len(days))
			if len(days) == 0 {
				p.faint("No non-working days loaded.")
				return nil
			}
			rows := make([][]interface{}, 0, len(days))
			for _, d := range days {
				mark := ""
				if d.Transferred {
					mark = "transferred"
				}
				rows = append(rows, []interface{}{d.Date.Format(layoutISO), d.Date.Weekday(), mark})
			}
			p.table([]interface{}{"Date", "Weekday", ""}, rows)
			return nil
		},
	}

	count := &cobra.Command{
		Use:   "count",
		Short: "Number of non-working days stored.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			s, err := o.open()
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.nonWorking.CountNonWorkingDays()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d non-working days stored\n", n)
			return err
		},
	}

	cmd.AddCommand(load, month, count)
	topLevel.AddCommand(cmd)
}
