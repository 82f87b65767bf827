package lastfm

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Image sizes, smallest first, as returned in image arrays.
const (
	ImageSmall      = "small"
	ImageMedium     = "medium"
	ImageLarge      = "large"
	ImageExtraLarge = "extralarge"
)

// Image is one entry of an image array.
type Image struct {
	Size string `json:"size"`
	URL  string `json:"#text"`
}

// Images is an image array. Last.fm orders it small to extralarge.
type Images []Image

// ExtraLarge returns the extralarge URL, or "" when Last.fm has none.
// Smaller sizes are never substituted: an item without extralarge art is
// drawn with the no-image placeholder.
func (imgs Images) ExtraLarge() string {
	for _, img := range imgs {
		if img.Size == ImageExtraLarge {
			return img.URL
		}
	}
	return ""
}

// Count is an integer that Last.fm encodes as a string.
type Count int

func (c *Count) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return err
	}
	*c = Count(n)
	return nil
}

// List decodes a JSON array, a single object, or a missing value into a
// slice. Last.fm collapses one-element arrays into a bare object.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" || string(b) == `""` {
		*l = nil
		return nil
	}
	if b[0] == '[' {
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var item T
	if err := json.Unmarshal(b, &item); err != nil {
		return err
	}
	*l = List[T]{item}
	return nil
}

// PageAttr is the paging metadata on top lists.
type PageAttr struct {
	User       string `json:"user"`
	Page       Count  `json:"page"`
	PerPage    Count  `json:"perPage"`
	TotalPages Count  `json:"totalPages"`
	Total      Count  `json:"total"`
}

// ArtistRef is the short artist form nested in album entries.
type ArtistRef struct {
	Name string `json:"name"`
	MBID string `json:"mbid"`
	URL  string `json:"url"`
}

// TopAlbum is one entry of user.getTopAlbums.
type TopAlbum struct {
	Name      string    `json:"name"`
	MBID      string    `json:"mbid"`
	URL       string    `json:"url"`
	Playcount Count     `json:"playcount"`
	Artist    ArtistRef `json:"artist"`
	Image     Images    `json:"image"`
}

// TopArtist is one entry of user.getTopArtists.
type TopArtist struct {
	Name      string `json:"name"`
	MBID      string `json:"mbid"`
	URL       string `json:"url"`
	Playcount Count  `json:"playcount"`
	Image     Images `json:"image"`
}

// TopAlbums is the payload of user.getTopAlbums.
type TopAlbums struct {
	Albums List[TopAlbum] `json:"album"`
	Attr   PageAttr       `json:"@attr"`
}

// TopArtists is the payload of user.getTopArtists.
type TopArtists struct {
	Artists List[TopArtist] `json:"artist"`
	Attr    PageAttr        `json:"@attr"`
}

// UserInfo is the payload of user.getInfo.
type UserInfo struct {
	Name      string `json:"name"`
	RealName  string `json:"realname"`
	URL       string `json:"url"`
	Country   string `json:"country"`
	Playcount Count  `json:"playcount"`
	Image     Images `json:"image"`
}
