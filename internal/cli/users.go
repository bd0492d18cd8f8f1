package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func addUsers(topLevel *cobra.Command, o *Options) {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List registered users.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			s, err := o.open()
			if err != nil {
				return err
			}
			defer s.Close()

			users, err := s.users.GetAllUsers()
			if err != nil {
				return err
			}

			p := printer{out: cmd.OutOrStdout()}
			p.titleWithCount("Users", len(users))
			if len(users) == 0 {
				return nil
			}
			rows := make([][]interface{}, 0, len(users))
			for _, u := range users {
				username := ""
				if u.Username != "" {
					username = "@" + u.Username
				}
				rows = append(rows, []interface{}{u.ID, u.ChatID, u.FullName(), username, u.Role})
			}
			p.table([]interface{}{"ID", "Chat", "Name", "Username", "Role"}, rows)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

func addStats(topLevel *cobra.Command, o *Options) {
	cmd := &cobra.Command{
		Use:   "stats <chat-id>",
		Short: "Absence days per category for a user.",
		Example: `
absencectl stats 123456789
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			chatID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("bad chat id %q", args[0])
			}

			s, err := o.open()
			if err != nil {
				return err
			}
			defer s.Close()

			user, err := s.users.GetUser(chatID)
			if err != nil {
				return err
			}
			stats, err := s.stats.CategoryStats(user.ID)
			if err != nil {
				return err
			}

			p := printer{out: cmd.OutOrStdout()}
			p.title(user.FullName())
			rows := make([][]interface{}, 0, len(stats))
			for _, st := range stats {
				rows = append(rows, []interface{}{st.Category.Label, st.Count})
			}
			p.table([]interface{}{"Category", "Days"}, rows)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
