// Package relevance ranks screenshots against a free-text query.
//
// The engine is a set of pure functions over in-memory records: it
// tokenizes the query, scores the OCR text and the visual description of
// every eligible record with a term-frequency heuristic, classifies which
// field matched and returns a capped, sorted result list. Nothing here
// performs I/O or keeps state between calls, so every function is safe to
// call from concurrent goroutines.
//
//	results := relevance.Search("login form", records, 5)
//	for _, r := range results {
//	    fmt.Println(r.Filename, r.Confidence, r.MatchType)
//	}
//
// Policy values (inclusion threshold, tie-break epsilon, filename
// fallback) are carried by an Engine:
//
//	eng := relevance.New(relevance.Policy{
//	    MinScore:           0.05,
//	    TieEpsilon:         0.01,
//	    FilenameFallback:   true,
//	    FilenameConfidence: 0.5,
//	})
//	results := eng.Search(query, records, 20)
package relevance
