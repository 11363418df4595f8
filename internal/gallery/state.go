// Package gallery holds the video list component: the paginated view state of
// one channel's search results and the fetch operation that drives it.
package gallery

import "github.com/yt-gallery/internal/models"

// FetchFailedMessage is the only error text ever shown to the viewer.
const FetchFailedMessage = "動画の取得に失敗しました。もう一度試してください。"

// MergeMode says how a fetched page is combined with the videos already shown
type MergeMode int

const (
	// MergeReplace makes the fetched page the whole sequence
	MergeReplace MergeMode = iota
	// MergeAppend adds the fetched page after the current sequence
	MergeAppend
)

// State is the view state of the component. The transition methods take a
// value receiver and return the next state; they never mutate the receiver.
type State struct {
	Videos        []models.Video `json:"videos"`
	NextPageToken string         `json:"nextPageToken,omitempty"`
	PrevPageToken string         `json:"prevPageToken,omitempty"`
	Loading       bool           `json:"loading"`
	Error         string         `json:"error"`
}

// Begin moves the state to loading and clears any previous error.
func (s State) Begin() State {
	s.Loading = true
	s.Error = ""
	return s
}

// Succeed merges page into the sequence and takes over its cursors.
// Absent cursors in the response clear the stored ones.
func (s State) Succeed(page models.SearchPage, mode MergeMode) State {
	var videos []models.Video
	if mode == MergeAppend {
		videos = make([]models.Video, 0, len(s.Videos)+len(page.Items))
		videos = append(videos, s.Videos...)
	} else {
		videos = make([]models.Video, 0, len(page.Items))
	}
	s.Videos = append(videos, page.Items...)
	s.NextPageToken = page.NextPageToken
	s.PrevPageToken = page.PrevPageToken
	s.Loading = false
	return s
}

// Fail records message and leaves the sequence and cursors as they were.
func (s State) Fail(message string) State {
	s.Error = message
	s.Loading = false
	return s
}

// Clone returns a copy that shares no memory with s.
func (s State) Clone() State {
	out := s
	out.Videos = make([]models.Video, len(s.Videos))
	copy(out.Videos, s.Videos)
	return out
}

// ShowPrev reports whether the "Previous Page" control is rendered
func (s State) ShowPrev() bool {
	return !s.Loading && s.PrevPageToken != ""
}

// ShowNext reports whether the "Next Page" control is rendered
func (s State) ShowNext() bool {
	return !s.Loading && s.NextPageToken != ""
}
