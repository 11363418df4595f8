package models

// Video represents a YouTube video returned by the channel search
type Video struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnailUrl"`
}

// SearchPage is one page of search results together with its cursors.
// An empty token means the API did not return one.
type SearchPage struct {
	Items         []Video `json:"items"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
	PrevPageToken string  `json:"prevPageToken,omitempty"`
}

// SearchQuery holds the parameters of one search request
type SearchQuery struct {
	ChannelID  string
	PageToken  string
	Order      string
	MaxResults int64
}

const (
	// DefaultOrder lists the newest uploads first
	DefaultOrder = "date"
	// DefaultMaxResults is the page size requested from the API
	DefaultMaxResults int64 = 10
)
