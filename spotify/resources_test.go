package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"
)

func TestTrackFetch_UnsetID(t *testing.T) {
	transport := &fakeTransport{body: []byte(`{}`)}
	track := NewTrack("", NewQueryClient(transport, testHashes))

	_, err := track.Fetch(context.Background())
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Fetch() error = %v, want ValidationError", err)
	}
	if transport.calls != 0 {
		t.Errorf("transport called %d times for an unset ID", transport.calls)
	}
}

func TestTrackFetch_TransportFailure(t *testing.T) {
	transport := &fakeTransport{err: errors.New("timeout")}
	track := NewTrack("0VjIjW4GlUZAMYd2vXMi3b", NewQueryClient(transport, testHashes))

	_, err := track.Fetch(context.Background())
	var re *ResourceError
	if !errors.As(err, &re) {
		t.Fatalf("Fetch() error = %v, want ResourceError", err)
	}
	if re.Kind != KindTrack {
		t.Errorf("Kind = %q, want track", re.Kind)
	}
	if !strings.Contains(re.Detail, "timeout") {
		t.Errorf("Detail = %q, want upstream detail preserved", re.Detail)
	}
}

func TestFetch_MissingHashNotWrapped(t *testing.T) {
	transport := &fakeTransport{body: []byte(`{}`)}
	client := NewQueryClient(transport, StaticHashes{})

	fetches := map[string]func() error{
		"track": func() error {
			_, err := NewTrack("0VjIjW4GlUZAMYd2vXMi3b", client).Fetch(context.Background())
			return err
		},
		"album": func() error {
			_, err := NewAlbum("4yP0hdKOZPNshxUOjY0cZj", client).Fetch(context.Background(), 50, 0, "en")
			return err
		},
		"playlist": func() error {
			_, err := NewPlaylist("37i9dQZF1DXcBWIGoYBM5M", client).Fetch(context.Background(), 343, 0)
			return err
		},
	}
	for name, fetch := range fetches {
		t.Run(name, func(t *testing.T) {
			err := fetch()
			if !errors.Is(err, ErrHashUnavailable) {
				t.Fatalf("Fetch() error = %v, want ErrHashUnavailable", err)
			}
			var re *ResourceError
			if errors.As(err, &re) {
				t.Errorf("hash-resolution failure must not be a ResourceError, got %v", re)
			}
			if transport.calls != 0 {
				t.Errorf("transport called %d times before hash resolution failed", transport.calls)
			}
		})
	}
}

func TestNewTrack_NormalizesAndLinks(t *testing.T) {
	track := NewTrack("https://open.spotify.com/track/0VjIjW4GlUZAMYd2vXMi3b?si=abc", nil)
	if track.ID != "0VjIjW4GlUZAMYd2vXMi3b" {
		t.Errorf("ID = %q", track.ID)
	}
	if track.Link != "https://open.spotify.com/track/0VjIjW4GlUZAMYd2vXMi3b" {
		t.Errorf("Link = %q", track.Link)
	}
}

func TestAlbumFetch_Variables(t *testing.T) {
	transport := &fakeTransport{body: []byte(`{"data":{}}`)}
	album := NewAlbum("4yP0hdKOZPNshxUOjY0cZj", NewQueryClient(transport, testHashes))

	if _, err := album.Fetch(context.Background(), 50, 10, ""); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	want := `{"uri":"spotify:album:4yP0hdKOZPNshxUOjY0cZj","locale":"en","offset":10,"limit":50}`
	if got := transport.lastParams.Get("variables"); got != want {
		t.Errorf("variables = %q, want %q", got, want)
	}
}

func TestPlaylistFetch_Variables(t *testing.T) {
	transport := &fakeTransport{body: []byte(`{"data":{}}`)}
	playlist := NewPlaylist("37i9dQZF1DXcBWIGoYBM5M", NewQueryClient(transport, testHashes))

	if _, err := playlist.Fetch(context.Background(), 343, 0); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	want := `{"uri":"spotify:playlist:37i9dQZF1DXcBWIGoYBM5M","offset":0,"limit":343}`
	if got := transport.lastParams.Get("variables"); got != want {
		t.Errorf("variables = %q, want %q", got, want)
	}
}

// albumRespond fabricates paged album documents for a fixed track total.
func albumRespond(total int) func(params url.Values) ([]byte, error) {
	return func(params url.Values) ([]byte, error) {
		var vars struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
		}
		if err := json.Unmarshal([]byte(params.Get("variables")), &vars); err != nil {
			return nil, err
		}
		count := vars.Limit
		if vars.Offset+count > total {
			count = total - vars.Offset
		}
		items := make([]map[string]int, 0, count)
		for i := 0; i < count; i++ {
			items = append(items, map[string]int{"n": vars.Offset + i})
		}
		return json.Marshal(map[string]any{
			"data": map[string]any{
				"albumUnion": map[string]any{
					"name": "Test Album",
					"tracks": map[string]any{
						"totalCount": total,
						"items":      items,
					},
				},
			},
		})
	}
}

func TestAlbumAggregate(t *testing.T) {
	transport := &fakeTransport{respond: albumRespond(120)}
	album := NewAlbum("4yP0hdKOZPNshxUOjY0cZj", NewQueryClient(transport, testHashes))

	doc, err := album.Aggregate(context.Background(), "en")
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if transport.calls != 3 {
		t.Errorf("transport calls = %d, want 3", transport.calls)
	}

	var parsed struct {
		Data struct {
			AlbumUnion struct {
				Name   string `json:"name"`
				Tracks struct {
					TotalCount int               `json:"totalCount"`
					Items      []json.RawMessage `json:"items"`
				} `json:"tracks"`
			} `json:"albumUnion"`
		} `json:"data"`
	}
	if err := json.Unmarshal(doc, &parsed); err != nil {
		t.Fatal(err)
	}
	if parsed.Data.AlbumUnion.Name != "Test Album" {
		t.Errorf("first-page fields lost: name = %q", parsed.Data.AlbumUnion.Name)
	}
	if got := len(parsed.Data.AlbumUnion.Tracks.Items); got != 120 {
		t.Errorf("aggregated items = %d, want 120", got)
	}
	if parsed.Data.AlbumUnion.Tracks.TotalCount != 120 {
		t.Errorf("totalCount = %d, want 120", parsed.Data.AlbumUnion.Tracks.TotalCount)
	}
}

func TestAlbumAggregate_MidStreamFailure(t *testing.T) {
	respond := albumRespond(120)
	transport := &fakeTransport{}
	transport.respond = func(params url.Values) ([]byte, error) {
		var vars struct {
			Offset int `json:"offset"`
		}
		_ = json.Unmarshal([]byte(params.Get("variables")), &vars)
		if vars.Offset == 50 {
			return nil, errors.New("timeout")
		}
		return respond(params)
	}
	album := NewAlbum("4yP0hdKOZPNshxUOjY0cZj", NewQueryClient(transport, testHashes))

	doc, err := album.Aggregate(context.Background(), "en")
	var re *ResourceError
	if !errors.As(err, &re) {
		t.Fatalf("Aggregate() error = %v, want ResourceError", err)
	}
	if re.Kind != KindAlbum {
		t.Errorf("Kind = %q, want album", re.Kind)
	}
	if doc != nil {
		t.Error("Aggregate() returned a partial document on failure")
	}
	if transport.calls != 2 {
		t.Errorf("transport calls = %d, want 2 (failure aborts the loop)", transport.calls)
	}
}

func TestPlaylistAggregate_SinglePage(t *testing.T) {
	transport := &fakeTransport{respond: func(params url.Values) ([]byte, error) {
		return json.Marshal(map[string]any{
			"data": map[string]any{
				"playlistV2": map[string]any{
					"name": "Mix",
					"content": map[string]any{
						"totalCount": 2,
						"items":      []map[string]string{{"uid": "a"}, {"uid": "b"}},
					},
				},
			},
		})
	}}
	playlist := NewPlaylist("37i9dQZF1DXcBWIGoYBM5M", NewQueryClient(transport, testHashes))

	doc, err := playlist.Aggregate(context.Background())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if transport.calls != 1 {
		t.Errorf("transport calls = %d, want 1", transport.calls)
	}

	var parsed playlistDocument
	if err := json.Unmarshal(doc, &parsed); err != nil {
		t.Fatal(err)
	}
	var env collectionEnvelope
	if err := json.Unmarshal(parsed.Data.PlaylistV2.Content, &env); err != nil {
		t.Fatal(err)
	}
	if env.TotalCount != 2 || len(env.Items) != 2 {
		t.Errorf("content = %d items / totalCount %d, want 2/2", len(env.Items), env.TotalCount)
	}
}

func TestPlaylistFetchPage_MalformedDocument(t *testing.T) {
	transport := &fakeTransport{body: []byte(`{"data":{"playlistV2":{}}}`)}
	playlist := NewPlaylist("37i9dQZF1DXcBWIGoYBM5M", NewQueryClient(transport, testHashes))

	_, err := playlist.FetchPage(context.Background(), 343, 0)
	var re *ResourceError
	if !errors.As(err, &re) {
		t.Fatalf("FetchPage() error = %v, want ResourceError", err)
	}
}
