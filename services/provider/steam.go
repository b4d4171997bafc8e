package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultAPIBase = "https://api.steampowered.com"
const defaultStoreBase = "https://store.steampowered.com"
const defaultSpyBase = "https://steamspy.com"

// SteamGateway implements Gateway against the real Steam Web API, the store
// front API and SteamSpy. Base URLs are fields so tests can point the gateway
// at an httptest server.
type SteamGateway struct {
	APIKey    string
	APIBase   string
	StoreBase string
	SpyBase   string
	Client    *http.Client
}

// NewSteamGateway creates a gateway with the default endpoints and a request
// timeout, so a stuck provider can never block an aggregation indefinitely.
func NewSteamGateway(apiKey string) *SteamGateway {
	return &SteamGateway{
		APIKey:    apiKey,
		APIBase:   defaultAPIBase,
		StoreBase: defaultStoreBase,
		SpyBase:   defaultSpyBase,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (sg *SteamGateway) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: building request: %v", ErrProviderFailure, err)
	}

	resp, err := sg.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d from %s", ErrProviderFailure, resp.StatusCode, rawURL)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrProviderFailure, err)
	}
	return nil
}

// GetOwnedGames fetches the full owned-games list of a user, including app
// info, and synthesizes the store/header URLs for each title.
func (sg *SteamGateway) GetOwnedGames(ctx context.Context, steamID string) ([]OwnedGame, error) {
	endpoint := fmt.Sprintf("%s/IPlayerService/GetOwnedGames/v0001/?key=%s&steamid=%s&include_appinfo=1&format=json",
		sg.APIBase, url.QueryEscape(sg.APIKey), url.QueryEscape(steamID))

	var payload struct {
		Response struct {
			GameCount int `json:"game_count"`
			Games     []struct {
				AppID int    `json:"appid"`
				Name  string `json:"name"`
			} `json:"games"`
		} `json:"response"`
	}
	if err := sg.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	owned := make([]OwnedGame, 0, len(payload.Response.Games))
	for _, g := range payload.Response.Games {
		appID := strconv.Itoa(g.AppID)
		owned = append(owned, OwnedGame{
			AppID:       appID,
			Name:        g.Name,
			HeaderImage: fmt.Sprintf("https://cdn.cloudflare.steamstatic.com/steam/apps/%s/header.jpg", appID),
			StoreURL:    fmt.Sprintf("%s/app/%s", defaultStoreBase, appID),
		})
	}
	return owned, nil
}

// GetTags queries SteamSpy for the community tags of an app. SteamSpy encodes
// "no tags" as an empty JSON array instead of an object, so the field is
// decoded leniently. Tag order follows the document order of the response.
func (sg *SteamGateway) GetTags(ctx context.Context, appID string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/api.php?request=appdetails&appid=%s", sg.SpyBase, url.QueryEscape(appID))

	var payload struct {
		Tags json.RawMessage `json:"tags"`
	}
	if err := sg.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return parseTagKeys(payload.Tags), nil
}

// parseTagKeys extracts the object keys of a SteamSpy "tags" value in the
// order they appear in the document. Non-object values yield no tags.
func parseTagKeys(raw json.RawMessage) []string {
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil { // opening brace
		return nil
	}
	var tags []string
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return tags
		}
		if name, ok := key.(string); ok {
			tags = append(tags, name)
		}
		// skip the vote-count value
		var discard interface{}
		if err := dec.Decode(&discard); err != nil {
			return tags
		}
	}
	return tags
}

// GetGenreAndPrice queries the store front API for the categories and pricing
// of an app. A delisted title comes back with Success=false and no data.
func (sg *SteamGateway) GetGenreAndPrice(ctx context.Context, appID string) (AppDetails, error) {
	endpoint := fmt.Sprintf("%s/api/appdetails?appids=%s&l=en", sg.StoreBase, url.QueryEscape(appID))

	var payload map[string]struct {
		Success bool `json:"success"`
		Data    struct {
			IsFree        bool `json:"is_free"`
			PriceOverview struct {
				Initial int `json:"initial"`
				Final   int `json:"final"`
			} `json:"price_overview"`
			Categories []struct {
				ID          int    `json:"id"`
				Description string `json:"description"`
			} `json:"categories"`
		} `json:"data"`
	}
	if err := sg.getJSON(ctx, endpoint, &payload); err != nil {
		return AppDetails{}, err
	}

	entry, ok := payload[appID]
	if !ok || !entry.Success {
		return AppDetails{Success: false}, nil
	}

	details := AppDetails{Success: true}
	for _, c := range entry.Data.Categories {
		details.Genres = append(details.Genres, c.Description)
	}
	if !entry.Data.IsFree {
		details.InitialPrice = entry.Data.PriceOverview.Initial
		details.FinalPrice = entry.Data.PriceOverview.Final
	}
	return details, nil
}

// GetPlayerSummary resolves the public persona (name and avatar) of a Steam
// account, used by the alternative steamID login.
func (sg *SteamGateway) GetPlayerSummary(ctx context.Context, steamID string) (*PlayerSummary, error) {
	endpoint := fmt.Sprintf("%s/ISteamUser/GetPlayerSummaries/v0002/?key=%s&steamids=%s",
		sg.APIBase, url.QueryEscape(sg.APIKey), url.QueryEscape(steamID))

	var payload struct {
		Response struct {
			Players []struct {
				SteamID      string `json:"steamid"`
				PersonaName  string `json:"personaname"`
				AvatarMedium string `json:"avatarmedium"`
			} `json:"players"`
		} `json:"response"`
	}
	if err := sg.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	if len(payload.Response.Players) == 0 {
		return nil, fmt.Errorf("%w: no player found for steamID %s", ErrProviderFailure, steamID)
	}
	p := payload.Response.Players[0]
	return &PlayerSummary{
		SteamID:  p.SteamID,
		Username: p.PersonaName,
		Avatar:   p.AvatarMedium,
	}, nil
}
