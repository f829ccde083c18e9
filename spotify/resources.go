package spotify

import (
	"context"
	"encoding/json"
	"errors"

	sentry "github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
)

// Track fetches public track metadata. No login is required.
type Track struct {
	ID     ResourceID
	Link   string
	client *QueryClient
}

// NewTrack accepts a bare ID, share URL or spotify: URI.
func NewTrack(input string, client *QueryClient) *Track {
	id, err := Normalize(input, KindTrack)
	if err != nil {
		log.Warnf("Unrecognized track identifier %q, passing through as-is", input)
	}
	return &Track{ID: id, Link: ResourceLink(KindTrack, id), client: client}
}

type trackVariables struct {
	URI string `json:"uri"`
}

// Fetch returns the raw public track document.
func (t *Track) Fetch(ctx context.Context) (json.RawMessage, error) {
	if t.ID == "" {
		return nil, &ValidationError{Message: "track ID not set"}
	}

	span := sentry.StartSpan(ctx, "spotify.get_track")
	span.Description = "Get track from partner API"
	span.SetTag("track_id", string(t.ID))
	defer span.Finish()

	doc, err := t.client.Execute(ctx, "getTrack", trackVariables{URI: t.ID.URI(KindTrack)})
	if err != nil {
		log.Errorf("Failed to fetch track %s: %v", t.ID, err)
		span.Status = sentry.SpanStatusInternalError
		if errors.Is(err, ErrHashUnavailable) {
			// operator problem, not a bad resource
			return nil, err
		}
		return nil, resourceError(KindTrack, "could not get track info", err)
	}

	span.Status = sentry.SpanStatusOK
	return doc, nil
}

// Album fetches public album metadata, including its paginated track
// collection.
type Album struct {
	ID     ResourceID
	Link   string
	client *QueryClient
}

// NewAlbum accepts a bare ID, share URL or spotify: URI.
func NewAlbum(input string, client *QueryClient) *Album {
	id, err := Normalize(input, KindAlbum)
	if err != nil {
		log.Warnf("Unrecognized album identifier %q, passing through as-is", input)
	}
	return &Album{ID: id, Link: ResourceLink(KindAlbum, id), client: client}
}

type albumVariables struct {
	URI    string `json:"uri"`
	Locale string `json:"locale"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

// Fetch returns the raw album document for one slice of its tracks.
func (a *Album) Fetch(ctx context.Context, limit, offset int, locale string) (json.RawMessage, error) {
	if a.ID == "" {
		return nil, &ValidationError{Message: "album ID not set"}
	}
	if locale == "" {
		locale = "en"
	}

	span := sentry.StartSpan(ctx, "spotify.get_album")
	span.Description = "Get album from partner API"
	span.SetTag("album_id", string(a.ID))
	defer span.Finish()

	doc, err := a.client.Execute(ctx, "getAlbum", albumVariables{
		URI:    a.ID.URI(KindAlbum),
		Locale: locale,
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		log.Errorf("Failed to fetch album %s: %v", a.ID, err)
		span.Status = sentry.SpanStatusInternalError
		if errors.Is(err, ErrHashUnavailable) {
			return nil, err
		}
		return nil, resourceError(KindAlbum, "could not get album info", err)
	}

	span.Status = sentry.SpanStatusOK
	return doc, nil
}

type albumDocument struct {
	Data struct {
		AlbumUnion struct {
			Tracks json.RawMessage `json:"tracks"`
		} `json:"albumUnion"`
	} `json:"data"`
}

var albumCollectionPath = []string{"data", "albumUnion", "tracks"}

func albumPage(doc json.RawMessage, limit, offset int) (*Page, error) {
	var parsed albumDocument
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, resourceError(KindAlbum, "malformed album document", err)
	}
	return newPage(KindAlbum, parsed.Data.AlbumUnion.Tracks, limit, offset)
}

// FetchPage returns one slice of the album's track collection, parsed
// into pagination bookkeeping.
func (a *Album) FetchPage(ctx context.Context, limit, offset int, locale string) (*Page, error) {
	doc, err := a.Fetch(ctx, limit, offset, locale)
	if err != nil {
		return nil, err
	}
	return albumPage(doc, limit, offset)
}

// Aggregate pages through the whole track collection and returns the
// first-page document with the collection's items replaced by the full
// accumulated list and totalCount by its length. A mid-stream failure
// discards the partial accumulation.
func (a *Album) Aggregate(ctx context.Context, locale string) (json.RawMessage, error) {
	var first json.RawMessage
	fetch := func(ctx context.Context, limit, offset int) (*Page, error) {
		doc, err := a.Fetch(ctx, limit, offset, locale)
		if err != nil {
			return nil, err
		}
		if first == nil {
			first = doc
		}
		return albumPage(doc, limit, offset)
	}

	items, err := CollectItems(ctx, fetch, AlbumPageLimit)
	if err != nil {
		return nil, err
	}
	return spliceCollection(first, albumCollectionPath, items)
}

// Playlist fetches public playlist metadata, including its paginated
// item collection.
type Playlist struct {
	ID     ResourceID
	Link   string
	client *QueryClient
}

// NewPlaylist accepts a bare ID, share URL or spotify: URI.
func NewPlaylist(input string, client *QueryClient) *Playlist {
	id, err := Normalize(input, KindPlaylist)
	if err != nil {
		log.Warnf("Unrecognized playlist identifier %q, passing through as-is", input)
	}
	return &Playlist{ID: id, Link: ResourceLink(KindPlaylist, id), client: client}
}

type playlistVariables struct {
	URI    string `json:"uri"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

// Fetch returns the raw playlist document for one slice of its content.
func (p *Playlist) Fetch(ctx context.Context, limit, offset int) (json.RawMessage, error) {
	if p.ID == "" {
		return nil, &ValidationError{Message: "playlist ID not set"}
	}

	span := sentry.StartSpan(ctx, "spotify.fetch_playlist")
	span.Description = "Get playlist from partner API"
	span.SetTag("playlist_id", string(p.ID))
	defer span.Finish()

	doc, err := p.client.Execute(ctx, "fetchPlaylist", playlistVariables{
		URI:    p.ID.URI(KindPlaylist),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		log.Errorf("Failed to fetch playlist %s: %v", p.ID, err)
		span.Status = sentry.SpanStatusInternalError
		if errors.Is(err, ErrHashUnavailable) {
			return nil, err
		}
		return nil, resourceError(KindPlaylist, "could not get playlist info", err)
	}

	span.Status = sentry.SpanStatusOK
	return doc, nil
}

type playlistDocument struct {
	Data struct {
		PlaylistV2 struct {
			Content json.RawMessage `json:"content"`
		} `json:"playlistV2"`
	} `json:"data"`
}

var playlistCollectionPath = []string{"data", "playlistV2", "content"}

func playlistPage(doc json.RawMessage, limit, offset int) (*Page, error) {
	var parsed playlistDocument
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, resourceError(KindPlaylist, "malformed playlist document", err)
	}
	return newPage(KindPlaylist, parsed.Data.PlaylistV2.Content, limit, offset)
}

// FetchPage returns one slice of the playlist's content collection,
// parsed into pagination bookkeeping.
func (p *Playlist) FetchPage(ctx context.Context, limit, offset int) (*Page, error) {
	doc, err := p.Fetch(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return playlistPage(doc, limit, offset)
}

// Aggregate pages through the whole content collection and returns the
// first-page document with the collection's items replaced by the full
// accumulated list and totalCount by its length. A mid-stream failure
// discards the partial accumulation.
func (p *Playlist) Aggregate(ctx context.Context) (json.RawMessage, error) {
	var first json.RawMessage
	fetch := func(ctx context.Context, limit, offset int) (*Page, error) {
		doc, err := p.Fetch(ctx, limit, offset)
		if err != nil {
			return nil, err
		}
		if first == nil {
			first = doc
		}
		return playlistPage(doc, limit, offset)
	}

	items, err := CollectItems(ctx, fetch, PlaylistPageLimit)
	if err != nil {
		return nil, err
	}
	return spliceCollection(first, playlistCollectionPath, items)
}
