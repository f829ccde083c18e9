package spotify

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    Kind
		want    ResourceID
		wantErr bool
	}{
		{
			name:  "bare ID",
			input: "0VjIjW4GlUZAMYd2vXMi3b",
			kind:  KindTrack,
			want:  "0VjIjW4GlUZAMYd2vXMi3b",
		},
		{
			name:  "track URL",
			input: "https://open.spotify.com/track/0VjIjW4GlUZAMYd2vXMi3b",
			kind:  KindTrack,
			want:  "0VjIjW4GlUZAMYd2vXMi3b",
		},
		{
			name:  "track URL with si query",
			input: "https://open.spotify.com/track/0VjIjW4GlUZAMYd2vXMi3b?si=abc123",
			kind:  KindTrack,
			want:  "0VjIjW4GlUZAMYd2vXMi3b",
		},
		{
			name:  "track URI",
			input: "spotify:track:0VjIjW4GlUZAMYd2vXMi3b",
			kind:  KindTrack,
			want:  "0VjIjW4GlUZAMYd2vXMi3b",
		},
		{
			name:  "playlist URL",
			input: "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M",
			kind:  KindPlaylist,
			want:  "37i9dQZF1DXcBWIGoYBM5M",
		},
		{
			name:  "album URL with intl segment",
			input: "https://open.spotify.com/intl-de/album/4yP0hdKOZPNshxUOjY0cZj",
			kind:  KindAlbum,
			want:  "4yP0hdKOZPNshxUOjY0cZj",
		},
		{
			name:  "surrounding whitespace",
			input: "  0VjIjW4GlUZAMYd2vXMi3b\n",
			kind:  KindTrack,
			want:  "0VjIjW4GlUZAMYd2vXMi3b",
		},
		{
			name:    "wrong kind passes through",
			input:   "https://open.spotify.com/album/4yP0hdKOZPNshxUOjY0cZj",
			kind:    KindTrack,
			want:    "https://open.spotify.com/album/4yP0hdKOZPNshxUOjY0cZj",
			wantErr: true,
		},
		{
			name:    "garbage passes through",
			input:   "not a spotify thing",
			kind:    KindTrack,
			want:    "not a spotify thing",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input, tt.kind)
			if (err != nil) != tt.wantErr {
				t.Errorf("Normalize() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && !errors.Is(err, ErrUnrecognizedInput) {
				t.Errorf("Normalize() error = %v, want ErrUnrecognizedInput", err)
			}
			if got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeAgreesAcrossInputForms(t *testing.T) {
	forms := []string{
		"37i9dQZF1DXcBWIGoYBM5M",
		"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M",
		"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=xyz",
		"spotify:playlist:37i9dQZF1DXcBWIGoYBM5M",
	}
	for _, form := range forms {
		id, err := Normalize(form, KindPlaylist)
		if err != nil {
			t.Errorf("Normalize(%q) unexpected error: %v", form, err)
		}
		if id != "37i9dQZF1DXcBWIGoYBM5M" {
			t.Errorf("Normalize(%q) = %q, want canonical ID", form, id)
		}
	}
}

func TestResourceIDURI(t *testing.T) {
	id := ResourceID("4yP0hdKOZPNshxUOjY0cZj")
	if got := id.URI(KindAlbum); got != "spotify:album:4yP0hdKOZPNshxUOjY0cZj" {
		t.Errorf("URI() = %q", got)
	}
	if got := ResourceLink(KindAlbum, id); got != "https://open.spotify.com/album/4yP0hdKOZPNshxUOjY0cZj" {
		t.Errorf("ResourceLink() = %q", got)
	}
}
