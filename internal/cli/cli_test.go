package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var fixedNow = time.UnixMilli(1_700_000_200_000)

// executeCmd runs shotctl with args after restoring every flag default.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// fakeServer is a minimal shotsearch API.
type fakeServer struct {
	mu       sync.Mutex
	requests []*http.Request
	uploaded []string
	deleted  []string
}

func (f *fakeServer) start(t *testing.T) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/search", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		q := r.URL.Query().Get("q")
		if q == "nothing" {
			writeTestJSON(w, http.StatusOK, map[string]any{"results": []any{}, "query": q})
			return
		}
		if q == "" {
			writeTestJSON(w, http.StatusBadRequest, map[string]any{"error": "Query cannot be empty"})
			return
		}
		writeTestJSON(w, http.StatusOK, map[string]any{
			"results": []map[string]any{{
				"id":                "shot-1",
				"filename":          "login.png",
				"ocrText":           "Welcome back\n\nSign in to continue",
				"visualDescription": "A login form with a blue button",
				"confidence":        0.87,
				"matchType":         "both",
				"uploadedAt":        1_700_000_000_000,
			}},
			"query":        q,
			"totalFound":   1,
			"responseTime": 3,
		})
	})
	mux.HandleFunc("POST /api/upload", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeTestJSON(w, http.StatusBadRequest, map[string]any{"errors": []string{"No files provided"}})
			return
		}
		var processed []map[string]any
		var errs []string
		for _, fh := range r.MultipartForm.File["files"] {
			if fh.Filename == "bad.png" {
				errs = append(errs, "bad.png: Invalid file type or size. Must be PNG/JPG/JPEG/WebP under 10MB.")
				continue
			}
			f.mu.Lock()
			f.uploaded = append(f.uploaded, fh.Filename)
			f.mu.Unlock()
			processed = append(processed, map[string]any{"filename": fh.Filename, "processingStatus": "completed"})
		}
		if errs == nil {
			errs = []string{}
		}
		writeTestJSON(w, http.StatusOK, map[string]any{
			"success":        len(processed) > 0,
			"uploadedCount":  len(processed),
			"totalFiles":     len(r.MultipartForm.File["files"]),
			"errors":         errs,
			"processedFiles": processed,
		})
	})
	mux.HandleFunc("GET /api/screenshots", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeTestJSON(w, http.StatusOK, map[string]any{
			"screenshots": []map[string]any{
				{"id": "shot-2", "filename": "settings.png", "processingStatus": "completed", "fileSize": 2048,
					"uploadedAt": 1_700_000_100_000},
				{"id": "shot-1", "filename": "login.png", "processingStatus": "failed", "fileSize": 512,
					"uploadedAt": 1_700_000_000_000},
			},
			"total": 2,
		})
	})
	mux.HandleFunc("DELETE /api/screenshots/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		id := r.PathValue("id")
		if id != "shot-1" {
			writeTestJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Screenshot not found"})
			return
		}
		f.mu.Lock()
		f.deleted = append(f.deleted, id)
		f.mu.Unlock()
		writeTestJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Screenshot deleted successfully"})
	})
	mux.HandleFunc("GET /api/stats", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeTestJSON(w, http.StatusOK, map[string]any{
			"totalScreenshots":  1234,
			"storageUsed":       5 << 20,
			"byStatus":          map[string]int64{"completed": 1200, "failed": 30, "pending": 4},
			"totalSearches":     99,
			"avgResponseTimeMs": 12.5,
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func (f *fakeServer) record(r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.mu.Unlock()
}

func (f *fakeServer) lastRequest() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func writeTestJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
