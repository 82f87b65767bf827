package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// UserService wraps the user.* methods.
type UserService struct {
	client *Client
}

// GetInfo fetches a user's profile. An unknown user yields an error
// matching ErrUserNotFound.
func (s *UserService) GetInfo(ctx context.Context, user string) (*UserInfo, error) {
	body, err := s.client.call(ctx, "user.getinfo", map[string]string{"user": user})
	if err != nil {
		return nil, err
	}

	var resp struct {
		User UserInfo `json:"user"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding user.getinfo: %w", err)
	}
	return &resp.User, nil
}

// GetTopAlbums fetches up to limit of a user's top albums for period
// (7day, 1month, 3month, 6month, 12month or overall).
func (s *UserService) GetTopAlbums(ctx context.Context, user, period string, limit int) (*TopAlbums, error) {
	body, err := s.client.call(ctx, "user.gettopalbums", topParams(user, period, limit))
	if err != nil {
		return nil, err
	}

	var resp struct {
		TopAlbums TopAlbums `json:"topalbums"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding user.gettopalbums: %w", err)
	}
	return &resp.TopAlbums, nil
}

// GetTopArtists fetches up to limit of a user's top artists for period.
func (s *UserService) GetTopArtists(ctx context.Context, user, period string, limit int) (*TopArtists, error) {
	body, err := s.client.call(ctx, "user.gettopartists", topParams(user, period, limit))
	if err != nil {
		return nil, err
	}

	var resp struct {
		TopArtists TopArtists `json:"topartists"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding user.gettopartists: %w", err)
	}
	return &resp.TopArtists, nil
}

func topParams(user, period string, limit int) map[string]string {
	p := map[string]string{"user": user}
	if period != "" {
		p["period"] = period
	}
	if limit > 0 {
		p["limit"] = strconv.Itoa(limit)
	}
	return p
}
