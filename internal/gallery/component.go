package gallery

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yt-gallery/internal/config"
	"github.com/yt-gallery/internal/models"
)

var (
	// ErrNoPage is returned by NextPage and PrevPage when the cursor is absent
	ErrNoPage = errors.New("no page in that direction")
	// ErrFetchInFlight is returned under OverlapReject while a fetch is pending
	ErrFetchInFlight = errors.New("a fetch is already in flight")
)

// Searcher performs the one remote search call the component depends on
type Searcher interface {
	SearchVideos(ctx context.Context, query models.SearchQuery) (*models.SearchPage, error)
}

// SearcherFactory builds a Searcher bound to an API key
type SearcherFactory func(ctx context.Context, apiKey string) (Searcher, error)

type direction int

const (
	directionNone direction = iota
	directionNext
	directionPrev
)

// Options tunes the component. Zero values select the original behaviour:
// append on every cursor and no overlap guard.
type Options struct {
	Pagination config.PaginationMode
	Overlap    config.OverlapPolicy
	Logger     logrus.FieldLogger
}

// Component is the video list of one viewer. It is safe for concurrent use;
// overlapping fetches are not cancelled and the last one to finish decides
// the whole state.
type Component struct {
	factory SearcherFactory
	opts    Options
	log     logrus.FieldLogger

	mu        sync.Mutex
	searcher  Searcher
	apiKey    string
	channelID string
	mounted   bool
	// generation changes on every (re)mount; completions of older fetches are dropped
	generation uint64
	inflight   int
	state      State
}

// New creates an unmounted component. Call Configure to mount it.
func New(factory SearcherFactory, opts Options) *Component {
	if opts.Pagination == "" {
		opts.Pagination = config.PaginationAppend
	}
	if opts.Overlap == "" {
		opts.Overlap = config.OverlapAllow
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Component{
		factory: factory,
		opts:    opts,
		log:     log,
	}
}

// Configure mounts the component with the given credentials, or remounts it
// when either value changed. A (re)mount resets the state, discards fetches
// still pending for the previous credentials and fetches the first page.
// Unchanged credentials on a mounted component do nothing.
func (c *Component) Configure(ctx context.Context, apiKey, channelID string) error {
	c.mu.Lock()
	if c.mounted && c.apiKey == apiKey && c.channelID == channelID {
		c.mu.Unlock()
		return nil
	}
	keyChanged := !c.mounted || c.apiKey != apiKey
	searcher := c.searcher
	c.mu.Unlock()

	if keyChanged {
		var err error
		searcher, err = c.factory(ctx, apiKey)
		if err != nil {
			searcher = nil
			c.log.WithError(err).WithField("channel_id", channelID).Error("failed to create search client")
		}
	}

	c.mu.Lock()
	c.searcher = searcher
	c.apiKey = apiKey
	c.channelID = channelID
	c.mounted = true
	c.generation++
	c.inflight = 0
	c.state = State{}
	c.mu.Unlock()

	c.log.WithField("channel_id", channelID).Debug("component mounted")
	return c.fetch(ctx, "", directionNone, true)
}

// Fetch loads one page. An empty pageToken is a fresh fetch and replaces the
// sequence; any other token appends, previous-page tokens included.
// A failed fetch keeps the sequence, sets FetchFailedMessage and returns the
// underlying error.
func (c *Component) Fetch(ctx context.Context, pageToken string) error {
	return c.fetch(ctx, pageToken, directionNone, false)
}

// NextPage fetches the page after the current one.
func (c *Component) NextPage(ctx context.Context) error {
	c.mu.Lock()
	token := c.state.NextPageToken
	c.mu.Unlock()
	if token == "" {
		return ErrNoPage
	}
	return c.fetch(ctx, token, directionNext, false)
}

// PrevPage fetches the page before the current one.
func (c *Component) PrevPage(ctx context.Context) error {
	c.mu.Lock()
	token := c.state.PrevPageToken
	c.mu.Unlock()
	if token == "" {
		return ErrNoPage
	}
	return c.fetch(ctx, token, directionPrev, false)
}

// State returns a snapshot of the view state.
func (c *Component) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// ChannelID returns the channel the component is mounted on.
func (c *Component) ChannelID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channelID
}

// APIKey returns the key the component is mounted with.
func (c *Component) APIKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apiKey
}

// fetch runs one search. The merge base is the sequence held when the fetch
// started, so when fetches overlap the last completion replaces the state
// wholesale. mount skips the overlap guard.
func (c *Component) fetch(ctx context.Context, pageToken string, dir direction, mount bool) error {
	c.mu.Lock()
	if !mount && c.opts.Overlap == config.OverlapReject && c.inflight > 0 {
		c.mu.Unlock()
		return ErrFetchInFlight
	}
	c.inflight++
	c.state = c.state.Begin()
	generation := c.generation
	base := c.state.Clone().Videos
	searcher := c.searcher
	query := models.SearchQuery{
		ChannelID:  c.channelID,
		PageToken:  pageToken,
		Order:      models.DefaultOrder,
		MaxResults: models.DefaultMaxResults,
	}
	c.mu.Unlock()

	var (
		page *models.SearchPage
		err  error
	)
	if searcher == nil {
		err = errors.New("search client is not available")
	} else {
		page, err = searcher.SearchVideos(ctx, query)
		if err == nil && page == nil {
			err = errors.New("empty search response")
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fields := logrus.Fields{
		"channel_id": query.ChannelID,
		"page_token": pageToken,
	}
	if generation != c.generation {
		c.log.WithFields(fields).Debug("dropped result of a fetch for previous credentials")
		return err
	}
	c.inflight--

	if err != nil {
		c.log.WithError(err).WithFields(fields).Error("failed to fetch videos")
		c.state = c.state.Fail(FetchFailedMessage)
	} else {
		next := c.state
		next.Videos = base
		c.state = next.Succeed(*page, c.mergeMode(pageToken, dir))
		c.log.WithFields(fields).WithFields(logrus.Fields{
			"items": len(page.Items),
			"total": len(c.state.Videos),
		}).Debug("fetched videos")
	}
	c.state.Loading = c.inflight > 0

	return err
}

func (c *Component) mergeMode(pageToken string, dir direction) MergeMode {
	if pageToken == "" {
		return MergeReplace
	}
	if dir == directionPrev && c.opts.Pagination == config.PaginationReplacePrevious {
		return MergeReplace
	}
	return MergeAppend
}
