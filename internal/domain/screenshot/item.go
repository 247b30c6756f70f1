package screenshot

import "github.com/kailas-cloud/shotsearch/pkg/relevance"

// View is the projection shared by stored screenshots and search hits.
type View struct {
	ID                string
	Filename          string
	ImageURL          string
	OCRText           string
	VisualDescription string
	UploadedAt        int64
	FileSize          int64
}

// Item is either a Stored screenshot or a search Hit.
type Item interface {
	View() View
	item()
}

// Stored is a screenshot as listed from the store.
type Stored struct {
	Screenshot Screenshot
}

// Hit is a ranked search result.
type Hit struct {
	Result relevance.Result
}

// View implements Item.
func (s Stored) View() View {
	return View{
		ID:                s.Screenshot.ID(),
		Filename:          s.Screenshot.Filename(),
		ImageURL:          s.Screenshot.ImageURL(),
		OCRText:           s.Screenshot.OCRText(),
		VisualDescription: s.Screenshot.VisualDescription(),
		UploadedAt:        s.Screenshot.UploadedAt(),
		FileSize:          s.Screenshot.FileSize(),
	}
}

// View implements Item.
func (h Hit) View() View {
	return View{
		ID:                h.Result.ID,
		Filename:          h.Result.Filename,
		ImageURL:          h.Result.ImageURL,
		OCRText:           h.Result.OCRText,
		VisualDescription: h.Result.VisualDescription,
		UploadedAt:        h.Result.UploadedAt,
		FileSize:          h.Result.FileSize,
	}
}

func (Stored) item() {}
func (Hit) item()    {}

// Preview is an item with its text fields split into highlighted segments.
type Preview struct {
	View       View
	Query      string
	OCR        []relevance.Segment
	Visual     []relevance.Segment
	Confidence float64             // zero for stored items
	MatchType  relevance.MatchType // empty for stored items
}

// NewPreview highlights query inside the item's text fields.
func NewPreview(it Item, query string) Preview {
	v := it.View()
	p := Preview{
		View:   v,
		Query:  query,
		OCR:    relevance.Highlight(v.OCRText, query),
		Visual: relevance.Highlight(v.VisualDescription, query),
	}
	if h, ok := it.(Hit); ok {
		p.Confidence = h.Result.Confidence
		p.MatchType = h.Result.MatchType
	}
	return p
}

// Hits wraps search results as items.
func Hits(results []relevance.Result) []Item {
	items := make([]Item, len(results))
	for i, r := range results {
		items[i] = Hit{Result: r}
	}
	return items
}
