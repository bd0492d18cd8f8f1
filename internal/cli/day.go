package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func addDay(topLevel *cobra.Command, o *Options) {
	cmd := &cobra.Command{
		Use:   "day [yyyy-mm-dd]",
		Short: "Show who is absent on a date, today by default.",
		Example: `
absencectl day
absencectl day 2026-05-04
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			date := time.Now()
			if len(args) == 1 {
				d, err := time.Parse(layoutISO, args[0])
				if err != nil {
					return fmt.Errorf("bad date %q, expected yyyy-mm-dd", args[0])
				}
				date = d
			}

			s, err := o.open()
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.absences.ByDate(date)
			if err != nil {
				return err
			}

			p := printer{out: cmd.OutOrStdout()}
			p.titleWithCount(date.Format("02.01.2006"), len(entries))
			if len(entries) == 0 {
				p.faint("Nobody is absent.")
				return nil
			}
			rows := make([][]interface{}, 0, len(entries))
			for _, e := range entries {
				callable := ""
				if e.Callable {
					callable = "yes"
				}
				rows = append(rows, []interface{}{e.User.FullName(), e.Category.Label, e.Reason, callable, e.Comment})
			}
			p.table([]interface{}{"Name", "Category", "Reason", "Callable", "Comment"}, rows)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
