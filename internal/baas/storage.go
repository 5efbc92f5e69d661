package baas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// UploadOptions mirror the storage API upload headers.
type UploadOptions struct {
	ContentType  string
	CacheControl int // seconds
	Upsert       bool
}

// Upload stores body at path inside bucket.
func (c *Client) Upload(ctx context.Context, bucket, path string, body io.Reader, opts UploadOptions) error {
	headers := http.Header{}
	if opts.ContentType != "" {
		headers.Set("Content-Type", opts.ContentType)
	} else {
		headers.Set("Content-Type", "application/octet-stream")
	}
	if opts.CacheControl > 0 {
		headers.Set("Cache-Control", "max-age="+strconv.Itoa(opts.CacheControl))
	}
	headers.Set("x-upsert", strconv.FormatBool(opts.Upsert))

	_, err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/storage/v1/object/" + bucket + "/" + escapePath(path),
		headers: headers,
		body:    body,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s/%s: %w", bucket, path, err)
	}
	return nil
}

// PublicURL returns the public address of an object in a public bucket.
func (c *Client) PublicURL(bucket, path string) string {
	return c.baseURL + "/storage/v1/object/public/" + bucket + "/" + escapePath(path)
}

type removedObject struct {
	Name string `json:"name"`
}

// Remove deletes the objects at paths and returns the names that existed.
func (c *Client) Remove(ctx context.Context, bucket string, paths ...string) ([]string, error) {
	body, err := jsonBody(map[string][]string{"prefixes": paths})
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/storage/v1/object/" + bucket,
		body:   body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove from %s: %w", bucket, err)
	}

	var removed []removedObject
	if len(resp.body) > 0 {
		if err := json.Unmarshal(resp.body, &removed); err != nil {
			return nil, fmt.Errorf("failed to decode remove response: %w", err)
		}
	}
	names := make([]string, 0, len(removed))
	for _, obj := range removed {
		names = append(names, obj.Name)
	}
	return names, nil
}

func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
