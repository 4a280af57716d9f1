package gapi

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"

	"golang.org/x/exp/mmap"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// youtubeWatchURL is the public URL prefix for uploaded videos.
const youtubeWatchURL = "https://youtu.be/"

// Client is an authenticated handle for the network stages of one upload
// cycle.
type Client struct {
	httpClient *http.Client
	sheetID    string
	sheetTitle string
	logger     Logger

	// endpoint overrides the API base URL; set in tests.
	endpoint string
}

func (c *Client) options() []option.ClientOption {
	opts := []option.ClientOption{option.WithHTTPClient(c.httpClient)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	return opts
}

// Upload streams videoFile to YouTube as an unlisted video and returns its
// public URL. onProgress receives 0..100 as bytes go out; the caller is
// responsible for deduplicating repeats.
func (c *Client) Upload(ctx context.Context, title, videoFile string, onProgress func(int)) (string, error) {
	svc, err := youtube.NewService(ctx, c.options()...)
	if err != nil {
		return "", fmt.Errorf("youtube service: %w", err)
	}

	reader, err := mmap.Open(videoFile)
	if err != nil {
		return "", fmt.Errorf("open video: %w", err)
	}
	defer reader.Close()
	size := int64(reader.Len())

	call := svc.Videos.Insert([]string{"snippet", "status"}, &youtube.Video{
		Snippet: &youtube.VideoSnippet{Title: title},
		Status:  &youtube.VideoStatus{PrivacyStatus: "unlisted"},
	})
	call.Media(io.NewSectionReader(reader, 0, size))
	if onProgress != nil && size > 0 {
		call.ProgressUpdater(func(current, _ int64) {
			onProgress(int(math.Round(float64(current) / float64(size) * 100)))
		})
	}

	video, err := call.Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("video insert: %w", err)
	}
	if video.Id == "" {
		raw, _ := video.MarshalJSON()
		return "", fmt.Errorf("%w: %s", ErrUploadFailed, raw)
	}

	url := youtubeWatchURL + video.Id
	c.logger.Printf("Uploaded: %s", url)
	return url, nil
}
