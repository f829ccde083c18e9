package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"pathfinder/cache"
	"pathfinder/pages"
	"pathfinder/sentry"
	"pathfinder/spotify"
)

// Manager owns the per-resource caches and the shared query client, and
// maps fetch outcomes to HTTP responses.
type Manager struct {
	client    *spotify.QueryClient
	locale    string
	tracks    *cache.Cache
	albums    *cache.Cache
	playlists *cache.Cache
}

func NewManager(client *spotify.QueryClient, locale string, tracks, albums, playlists *cache.Cache) *Manager {
	return &Manager{
		client:    client,
		locale:    locale,
		tracks:    tracks,
		albums:    albums,
		playlists: playlists,
	}
}

type fetchQuery struct {
	input  string
	limit  int
	offset int
	full   bool
}

func parseQuery(c *gin.Context) fetchQuery {
	limit := intQuery(c, "limit", spotify.DefaultPageLimit)
	return fetchQuery{
		input:  strings.Trim(c.Param("input"), "/"),
		limit:  limit,
		offset: intQuery(c, "offset", 0),
		full:   limit == -1,
	}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// GetTrack serves GET /track/*input.
func (m *Manager) GetTrack(c *gin.Context) {
	q := parseQuery(c)
	if q.input == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing track ID"})
		return
	}

	body, err := m.tracks.GetOrCompute(c.Request.Context(), q.input, func(ctx context.Context) ([]byte, error) {
		return spotify.NewTrack(q.input, m.client).Fetch(ctx)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondDocument(c, body)
}

// GetAlbum serves GET /album/*input. limit=-1 pages through the whole
// track collection before responding.
func (m *Manager) GetAlbum(c *gin.Context) {
	q := parseQuery(c)
	if q.input == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing album ID"})
		return
	}
	locale := c.DefaultQuery("locale", m.locale)

	key := fmt.Sprintf("%s:%d:%d:%s", q.input, q.limit, q.offset, locale)
	body, err := m.albums.GetOrCompute(c.Request.Context(), key, func(ctx context.Context) ([]byte, error) {
		album := spotify.NewAlbum(q.input, m.client)
		if q.full {
			return album.Aggregate(ctx, locale)
		}
		return album.Fetch(ctx, q.limit, q.offset, locale)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondDocument(c, body)
}

// GetPlaylist serves GET /playlist/*input. limit=-1 pages through the
// whole content collection before responding.
func (m *Manager) GetPlaylist(c *gin.Context) {
	q := parseQuery(c)
	if q.input == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing playlist ID"})
		return
	}

	key := fmt.Sprintf("%s:%d:%d", q.input, q.limit, q.offset)
	body, err := m.playlists.GetOrCompute(c.Request.Context(), key, func(ctx context.Context) ([]byte, error) {
		playlist := spotify.NewPlaylist(q.input, m.client)
		if q.full {
			return playlist.Aggregate(ctx)
		}
		return playlist.Fetch(ctx, q.limit, q.offset)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondDocument(c, body)
}

// ClearCache serves POST /clear.
func (m *Manager) ClearCache(c *gin.Context) {
	m.tracks.Clear()
	m.albums.Clear()
	m.playlists.Clear()
	log.Info("All metadata caches cleared")
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Usage serves the landing document for unmatched routes. Paths that
// mention a known resource kind are treated as genuine 404s; anything
// else is a malformed request.
func (m *Manager) Usage(c *gin.Context) {
	path := c.Request.URL.Path
	status := http.StatusBadRequest
	for _, kind := range []string{"track", "album", "playlist"} {
		if strings.Contains(path, kind) {
			status = http.StatusNotFound
			break
		}
	}
	c.Data(status, "text/html; charset=utf-8", []byte(pages.Usage))
}

func respondDocument(c *gin.Context, body []byte) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func respondError(c *gin.Context, err error) {
	var ve *spotify.ValidationError
	var re *spotify.ResourceError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
	case errors.As(err, &re):
		log.Warnf("Upstream rejected %s request: %v", re.Kind, re)
		c.JSON(http.StatusNotFound, gin.H{"error": re.Error()})
	default:
		log.Errorf("Unclassified error: %v", err)
		sentry.ReportError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
