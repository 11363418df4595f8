package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/yt-gallery/internal/gallery"
	"github.com/yt-gallery/internal/models"
)

// ErrSearchFailed wraps every error returned by YouTubeSearcher.SearchVideos
var ErrSearchFailed = errors.New("YouTube search failed")

// SearcherOption configures a YouTubeSearcher
type SearcherOption func(*YouTubeSearcher)

// WithEndpoint points the client at another API root (useful for testing).
// The root must end with a slash, e.g. "http://127.0.0.1:8081/".
func WithEndpoint(endpoint string) SearcherOption {
	return func(s *YouTubeSearcher) {
		s.endpoint = endpoint
	}
}

// WithTimeout bounds every search request. Zero means no timeout.
func WithTimeout(timeout time.Duration) SearcherOption {
	return func(s *YouTubeSearcher) {
		s.timeout = timeout
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(log logrus.FieldLogger) SearcherOption {
	return func(s *YouTubeSearcher) {
		s.log = log
	}
}

// YouTubeSearcher lists a channel's videos through the YouTube Data API search endpoint
type YouTubeSearcher struct {
	service  *youtube.Service
	endpoint string
	timeout  time.Duration
	log      logrus.FieldLogger
}

// NewYouTubeSearcher creates a searcher authenticated with a static API key.
// An empty key is allowed; the API rejects the request instead.
func NewYouTubeSearcher(ctx context.Context, apiKey string, opts ...SearcherOption) (*YouTubeSearcher, error) {
	s := &YouTubeSearcher{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(s)
	}

	var clientOpts []option.ClientOption
	if apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(apiKey))
	} else {
		clientOpts = append(clientOpts, option.WithoutAuthentication())
	}
	if s.endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(s.endpoint))
	}

	service, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	s.service = service

	return s, nil
}

// SearchVideos fetches one page of search results for the query's channel
func (s *YouTubeSearcher) SearchVideos(ctx context.Context, q models.SearchQuery) (*models.SearchPage, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	order := q.Order
	if order == "" {
		order = models.DefaultOrder
	}
	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = models.DefaultMaxResults
	}

	call := s.service.Search.List([]string{"snippet"}).
		ChannelId(q.ChannelID).
		Order(order).
		MaxResults(maxResults).
		Context(ctx)
	if q.PageToken != "" {
		call = call.PageToken(q.PageToken)
	}

	s.log.WithFields(logrus.Fields{
		"channel_id": q.ChannelID,
		"page_token": q.PageToken,
	}).Debug("searching YouTube")

	response, err := call.Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: YouTube API returned status code: %d: %w", ErrSearchFailed, apiErr.Code, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}

	return toSearchPage(response)
}

func toSearchPage(response *youtube.SearchListResponse) (*models.SearchPage, error) {
	page := &models.SearchPage{
		Items:         make([]models.Video, 0, len(response.Items)),
		NextPageToken: response.NextPageToken,
		PrevPageToken: response.PrevPageToken,
	}

	for i, item := range response.Items {
		if item == nil || item.Id == nil || item.Snippet == nil {
			return nil, fmt.Errorf("%w: malformed search result at index %d", ErrSearchFailed, i)
		}
		page.Items = append(page.Items, models.Video{
			ID:          item.Id.VideoId,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			Thumbnail:   highThumbnail(item.Snippet.Thumbnails),
		})
	}

	return page, nil
}

// highThumbnail prefers the high resolution image and falls back to smaller ones
func highThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*youtube.Thumbnail{t.High, t.Medium, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}

// SearcherFactory returns a gallery.SearcherFactory that builds one searcher per
// API key and reuses it for every component mounted with that key.
func SearcherFactory(opts ...SearcherOption) gallery.SearcherFactory {
	var (
		mu       sync.Mutex
		searcher = make(map[string]*YouTubeSearcher)
	)
	return func(ctx context.Context, apiKey string) (gallery.Searcher, error) {
		mu.Lock()
		defer mu.Unlock()

		if s, ok := searcher[apiKey]; ok {
			return s, nil
		}
		s, err := NewYouTubeSearcher(ctx, apiKey, opts...)
		if err != nil {
			return nil, err
		}
		searcher[apiKey] = s
		return s, nil
	}
}
