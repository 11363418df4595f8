// Package session keeps one video list component per browser session in memory.
// A component is unmounted when its session has been idle for the store's TTL.
package session

import (
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yt-gallery/internal/gallery"
)

// Store maps session ids to components
type Store struct {
	cache        *gocache.Cache
	newComponent func() *gallery.Component
	log          logrus.FieldLogger
}

// NewStore creates a store whose entries expire after ttl without use.
func NewStore(ttl time.Duration, newComponent func() *gallery.Component, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Store{
		cache:        gocache.New(ttl, ttl/2),
		newComponent: newComponent,
		log:          log,
	}
	s.cache.OnEvicted(func(id string, _ interface{}) {
		s.log.WithField("session", id).Debug("component unmounted")
	})
	return s
}

// NewID returns a fresh session id
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an id produced by NewID
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Get returns the component of session id and refreshes its expiry.
func (s *Store) Get(id string) (*gallery.Component, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	s.cache.SetDefault(id, v)
	return v.(*gallery.Component), true
}

// GetOrCreate returns the component of session id, creating an unmounted one
// when the session is unknown. created is true only for the caller that
// actually stored the new component.
func (s *Store) GetOrCreate(id string) (comp *gallery.Component, created bool) {
	if comp, ok := s.Get(id); ok {
		return comp, false
	}

	comp = s.newComponent()
	if err := s.cache.Add(id, comp, gocache.DefaultExpiration); err != nil {
		// another request created it first
		if existing, ok := s.Get(id); ok {
			return existing, false
		}
		s.cache.SetDefault(id, comp)
	}
	s.log.WithField("session", id).Debug("component created")
	return comp, true
}

// Delete unmounts the component of session id
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	return s.cache.ItemCount()
}
