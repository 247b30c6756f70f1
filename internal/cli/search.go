package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/shotsearch/pkg/client"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search screenshots",
	Long: `Searches screenshots by the text recognized in them and by their visual
descriptions. Matching words are highlighted in the output.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (server default when 0)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	var opts []client.SearchOption
	if cmd.Flags().Changed("limit") {
		opts = append(opts, client.WithLimit(searchLimit))
	}

	res, err := c.Search(cmd.Context(), args[0], opts...)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd.OutOrStdout(), res)
	}
	writeSearchResults(cmd.OutOrStdout(), &res, time.Now())
	return nil
}

func writeSearchResults(w io.Writer, res *client.SearchResponse, now time.Time) {
	if len(res.Results) == 0 {
		_, _ = fmt.Fprintf(w, "No screenshots match %q.\n", res.Query)
		return
	}

	_, _ = fmt.Fprintf(w, "%s %s\n\n",
		styles.Title.Render(fmt.Sprintf("%d result(s) for %q", len(res.Results), res.Query)),
		styles.Muted.Render(fmt.Sprintf("(%d ms)", res.ResponseTime)),
	)
	for i := range res.Results {
		r := &res.Results[i]
		uploaded := humanize.RelTime(time.UnixMilli(r.UploadedAt), now, "ago", "from now")
		_, _ = fmt.Fprintf(w, "  [%d] %s %s\n", i+1, styles.Title.Render(r.Filename),
			styles.Muted.Render(fmt.Sprintf("%.0f%% · %s · %s", r.Confidence*100, r.MatchType, uploaded)))
		if r.OCRText != "" {
			_, _ = fmt.Fprintf(w, "      %s\n", renderSegments(snippet(r.OCRText, res.Query, snippetWidth), styles.Plain))
		}
		if r.VisualDescription != "" {
			_, _ = fmt.Fprintf(w, "      %s\n",
				renderSegments(snippet(r.VisualDescription, res.Query, snippetWidth), styles.Muted))
		}
		_, _ = fmt.Fprintf(w, "      %s\n\n", styles.Muted.Render("id: "+r.ID))
	}
}
