package cli

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/shotsearch/pkg/client"
)

var (
	listJSON  bool
	statsJSON bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List screenshots, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id...]",
	Short: "Delete screenshots",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show library statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd, deleteCmd, statsCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	shots, err := c.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	if listJSON {
		return printJSON(cmd.OutOrStdout(), shots)
	}
	writeScreenshotTable(cmd.OutOrStdout(), shots, time.Now())
	return nil
}

func writeScreenshotTable(w io.Writer, shots []client.Screenshot, now time.Time) {
	if len(shots) == 0 {
		_, _ = fmt.Fprintln(w, "No screenshots yet.")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.Border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Header
			}
			return styles.Plain.Padding(0, 1)
		}).
		Headers("ID", "FILENAME", "STATUS", "SIZE", "UPLOADED")
	for i := range shots {
		s := &shots[i]
		t.Row(
			s.ID,
			s.Filename,
			s.ProcessingStatus,
			humanize.IBytes(uint64(max(s.FileSize, 0))),
			humanize.RelTime(s.Uploaded(), now, "ago", "from now"),
		)
	}
	_, _ = fmt.Fprintln(w, t.Render())
	_, _ = fmt.Fprintln(w, styles.Muted.Render(fmt.Sprintf("%d screenshot(s)", len(shots))))
}

func runDelete(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	failed := 0
	for _, id := range args {
		if err := c.Delete(cmd.Context(), id); err != nil {
			failed++
			_, _ = fmt.Fprintf(w, "%s %s: %v\n", styles.Error.Render("✗"), id, err)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s deleted %s\n", styles.Success.Render("✓"), id)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d delete(s) failed", failed, len(args))
	}
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	st, err := c.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	if statsJSON {
		return printJSON(cmd.OutOrStdout(), st)
	}
	writeStats(cmd.OutOrStdout(), &st)
	return nil
}

func writeStats(w io.Writer, st *client.Stats) {
	_, _ = fmt.Fprintln(w, styles.Title.Render("Library"))
	_, _ = fmt.Fprintf(w, "  Screenshots:   %s\n", humanize.Comma(st.TotalScreenshots))
	_, _ = fmt.Fprintf(w, "  Storage used:  %s\n", humanize.IBytes(uint64(max(st.StorageUsed, 0))))

	statuses := make([]string, 0, len(st.ByStatus))
	for s := range st.ByStatus {
		statuses = append(statuses, s)
	}
	slices.Sort(statuses)
	for _, s := range statuses {
		_, _ = fmt.Fprintf(w, "    %-12s %s\n", s+":", humanize.Comma(st.ByStatus[s]))
	}

	_, _ = fmt.Fprintln(w, styles.Title.Render("Searches"))
	_, _ = fmt.Fprintf(w, "  Total:         %s\n", humanize.Comma(st.TotalSearches))
	_, _ = fmt.Fprintf(w, "  Avg response:  %.1f ms\n", st.AvgResponseTimeMs)
}
