// Package federation downloads media from the homeserver that owns it.
package federation

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/tendant/simple-media/pkg/simplemedia"
)

const sniffLen = 3072

// Config options for the federation client
type Config struct {
	Scheme    string        // "https" unless testing against plain HTTP
	Timeout   time.Duration // Per-request timeout, covering the body
	MaxSize   int64         // Largest body accepted, in bytes
	UserAgent string

	// BaseURL maps a server name to the URL its media API is reached at.
	// Defaults to Scheme://serverName.
	BaseURL func(serverName string) string

	HTTPClient *http.Client
}

// Client implements simplemedia.Fetcher over HTTP.
type Client struct {
	httpClient *http.Client
	config     Config
}

// New creates a federation client, filling in defaults.
func New(config Config) *Client {
	if config.Scheme == "" {
		config.Scheme = "https"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.MaxSize == 0 {
		config.MaxSize = 50 << 20
	}
	if config.UserAgent == "" {
		config.UserAgent = "simple-media"
	}
	if config.BaseURL == nil {
		scheme := config.Scheme
		config.BaseURL = func(serverName string) string {
			return scheme + "://" + serverName
		}
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{httpClient: httpClient, config: config}
}

// Fetch downloads serverName/mediaID. allow_remote=false is always sent so
// the remote server never fetches on our behalf. ErrRemoteNotFound is
// returned for an upstream 404 and ErrTooLarge when the body exceeds MaxSize.
func (c *Client) Fetch(ctx context.Context, serverName, mediaID string) (*simplemedia.FetchedMedia, error) {
	u := fmt.Sprintf("%s/_matrix/media/v3/download/%s/%s?allow_remote=false",
		c.config.BaseURL(serverName), url.PathEscape(serverName), url.PathEscape(mediaID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s/%s: %w", serverName, mediaID, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, simplemedia.ErrRemoteNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, fmt.Errorf("remote server %s returned status %d", serverName, resp.StatusCode)
	}

	if resp.ContentLength > c.config.MaxSize {
		resp.Body.Close()
		return nil, simplemedia.ErrTooLarge
	}

	body := bufio.NewReaderSize(resp.Body, sniffLen)
	mediaType := resp.Header.Get("Content-Type")
	if mediaType == "" {
		head, _ := body.Peek(sniffLen)
		mediaType = mimetype.Detect(head).String()
	}

	return &simplemedia.FetchedMedia{
		Body: &limitedBody{
			r:      io.LimitReader(body, c.config.MaxSize+1),
			closer: resp.Body,
			remain: c.config.MaxSize,
		},
		MediaType:  mediaType,
		Length:     resp.ContentLength,
		UploadName: uploadName(resp.Header.Get("Content-Disposition")),
	}, nil
}

// uploadName returns the filename from a Content-Disposition header,
// decoding the RFC 5987 filename* form when present.
func uploadName(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// limitedBody fails with ErrTooLarge once more than remain bytes are read.
type limitedBody struct {
	r      io.Reader
	closer io.Closer
	remain int64
}

func (l *limitedBody) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.remain -= int64(n)
	if l.remain < 0 {
		return n, simplemedia.ErrTooLarge
	}
	return n, err
}

func (l *limitedBody) Close() error {
	return l.closer.Close()
}
