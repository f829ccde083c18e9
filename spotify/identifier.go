package spotify

import (
	"regexp"
	"strings"
)

// ResourceID is the canonical token identifying a track, album or playlist.
type ResourceID string

// URI renders the ID as the partner API's spotify:<kind>:<id> form.
func (id ResourceID) URI(kind Kind) string {
	return "spotify:" + string(kind) + ":" + string(id)
}

// ResourceLink is the public open.spotify.com URL for a resource.
func ResourceLink(kind Kind, id ResourceID) string {
	return "https://open.spotify.com/" + string(kind) + "/" + string(id)
}

// bareID matches the fixed-length base62 token Spotify uses for all
// public resources.
var bareID = regexp.MustCompile(`^[0-9A-Za-z]{22}$`)

var resourcePatterns = map[Kind][]*regexp.Regexp{}

func init() {
	for _, kind := range []Kind{KindTrack, KindAlbum, KindPlaylist} {
		resourcePatterns[kind] = []*regexp.Regexp{
			// share URL, optionally with query suffix or extra path segments
			regexp.MustCompile(`(?:^|/)` + string(kind) + `/([0-9A-Za-z]+)`),
			regexp.MustCompile(`^spotify:` + string(kind) + `:([0-9A-Za-z]+)$`),
		}
	}
}

// Normalize reduces a bare token, share URL or spotify: URI to the
// canonical resource ID for the given kind. Patterns are tried in order
// and the first capture wins. Inputs matching no known form are passed
// through unchanged together with ErrUnrecognizedInput so callers can
// log the oddity; the upstream has the final say on validity.
func Normalize(input string, kind Kind) (ResourceID, error) {
	trimmed := strings.TrimSpace(input)
	if bareID.MatchString(trimmed) {
		return ResourceID(trimmed), nil
	}
	for _, pattern := range resourcePatterns[kind] {
		if m := pattern.FindStringSubmatch(trimmed); m != nil {
			return ResourceID(m[1]), nil
		}
	}
	return ResourceID(trimmed), ErrUnrecognizedInput
}
