package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/notetasks/internal/dates"
)

var resolveBase string

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <phrase>",
	Short: "Show the due date a phrase resolves to",
	Long: `Resolve applies the same date rules used during extraction to a single
phrase and prints the resulting date together with the rule that matched.
Phrases no rule understands are handed to the general date parser.

Example:
  notetasks resolve next monday --base 2024-01-10
  notetasks resolve "on the 5th"
  notetasks resolve "in 10 days"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := time.Now()
		if resolveBase != "" {
			t, err := time.ParseInLocation("2006-01-02", resolveBase, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --base %q: use YYYY-MM-DD", resolveBase)
			}
			base = t
		}

		phrase := strings.Join(args, " ")
		res, ok := dates.NewResolver(dates.NewDateParser()).Explain(phrase, base)

		out := cmd.OutOrStdout()
		if !ok {
			fmt.Fprintln(out, "unresolved")
			return nil
		}
		fmt.Fprintf(out, "%s (%s) via %s\n", res.Date.Format("2006-01-02"), res.Date.Weekday(), res.Source)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringVar(&resolveBase, "base", "", "reference date YYYY-MM-DD (default: today)")
}
