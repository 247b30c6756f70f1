// Package client is a Go client for the shotsearch HTTP API.
//
//	c, _ := client.New("http://localhost:8080")
//	res, _ := c.Search(ctx, "login button", client.WithLimit(10))
//	for _, r := range res.Results {
//	    fmt.Println(r.Filename, r.Confidence)
//	}
//
// Uploads take in-memory files or paths:
//
//	up, _ := c.UploadPaths(ctx, "shot-1.png", "shot-2.jpg")
//	fmt.Println(up.UploadedCount, up.Errors)
//
// Failed calls return *APIError, which matches the package sentinels
// with errors.Is:
//
//	if errors.Is(err, client.ErrNotFound) { ... }
package client
