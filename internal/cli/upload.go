package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/shotsearch/pkg/client"
)

// DefaultBatchSize matches the server's default per-request file cap.
const DefaultBatchSize = 50

var uploadBatchSize int

var uploadCmd = &cobra.Command{
	Use:   "upload [files...]",
	Short: "Upload screenshots",
	Long: `Uploads PNG, JPEG and WebP screenshots. The server recognizes their text
and describes them before they become searchable. Large selections are
sent in batches.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().IntVar(&uploadBatchSize, "batch", DefaultBatchSize, "files per upload request")
	rootCmd.AddCommand(uploadCmd)
}

// uploader is the slice of the client that uploads files.
type uploader interface {
	UploadPaths(ctx context.Context, paths ...string) (client.UploadResponse, error)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if uploadBatchSize < 1 {
		return errors.New("--batch must be at least 1")
	}
	c, err := newClient()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	uploaded := 0
	for _, batch := range chunk(args, uploadBatchSize) {
		n, err := uploadFiles(cmd.Context(), c, batch, w)
		uploaded += n
		if err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintf(w, "\nUploaded %d of %d file(s).\n", uploaded, len(args))
	if uploaded == 0 {
		return errors.New("no files were uploaded")
	}
	return nil
}

// uploadFiles sends one batch and reports each file. It returns the
// number of screenshots the server stored.
func uploadFiles(ctx context.Context, u uploader, paths []string, w io.Writer) (int, error) {
	res, err := u.UploadPaths(ctx, paths...)
	if err != nil {
		return 0, fmt.Errorf("upload failed: %w", err)
	}

	for i := range res.ProcessedFiles {
		f := &res.ProcessedFiles[i]
		mark := styles.Success.Render("✓")
		if f.ProcessingStatus != "completed" {
			mark = styles.Warning.Render("!")
		}
		_, _ = fmt.Fprintf(w, "%s %s %s\n", mark, f.Filename, styles.Muted.Render(f.ProcessingStatus))
	}
	for _, msg := range res.Errors {
		_, _ = fmt.Fprintf(w, "%s %s\n", styles.Error.Render("✗"), msg)
	}
	if res.VisionTokens > 0 {
		_, _ = fmt.Fprintln(w, styles.Muted.Render(fmt.Sprintf("vision tokens: %d", res.VisionTokens)))
	}
	return res.UploadedCount, nil
}

func chunk(items []string, size int) [][]string {
	var out [][]string
	for size < len(items) {
		items, out = items[size:], append(out, items[:size:size])
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
