// Package blob is the boundary to the object store. The rest of the module
// only ever sees the public URL an upload returns; bytes never touch the
// database.
package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"camposocial/config"
)

// Uploader stores raw bytes under a key and returns a publicly resolvable
// URL for them.
type Uploader interface {
	Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error)
}

// Client uploads to an S3-compatible endpoint over plain HTTP PUT and
// derives the public URL from the configured prefix.
type Client struct {
	cfg  config.Blob
	http *http.Client
}

func New(cfg config.Blob) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{},
	}
}

func (c *Client) Upload(ctx context.Context, key string, contentType string, body io.Reader) (string, error) {
	target := fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(c.cfg.Endpoint, "/"), c.cfg.Bucket, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, body)

	if err != nil {
		return "", fmt.Errorf("blob: build request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessKey+":"+c.cfg.SecretKey)
	req.Header.Set("X-Amz-Acl", "public-read")

	resp, err := c.http.Do(req)

	if err != nil {
		return "", fmt.Errorf("blob: upload %s: %w", key, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("blob: upload %s: unexpected status %d", key, resp.StatusCode)
	}

	return strings.TrimSuffix(c.cfg.PublicPrefix, "/") + "/" + key, nil
}

// Key layouts, matching where each media class lives in the bucket.

func YapKey(userID, filename string) string {
	return fmt.Sprintf("yaps/%s/%s", userID, filename)
}

func MessageKey(userID, filename string) string {
	return fmt.Sprintf("messages/%s/%s", userID, filename)
}

func ProductKey(productID, filename string) string {
	return fmt.Sprintf("products/%s/%s", productID, filename)
}

func ProfileKey(userID, filename string) string {
	return fmt.Sprintf("profile_images/%s/%s", userID, filename)
}

func EventKey(userID, filename string) string {
	return fmt.Sprintf("event_images/%s/%s", userID, filename)
}

// MediaType classifies a filename extension as image or video, empty for
// anything unsupported.
func MediaType(filename string) string {
	parts := strings.Split(filename, ".")
	ext := strings.ToLower(parts[len(parts)-1])

	switch ext {
	case "jpg", "jpeg", "png", "gif", "webp", "avif":
		return "image"
	case "mp4", "mov":
		return "video"
	}

	return ""
}
