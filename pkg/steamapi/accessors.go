package steamapi

import (
	"context"
	"strconv"
)

// csgoAppID is the app whose inventory and asset classes are looked up.
const csgoAppID = 730

// VanityType selects the namespace ResolveVanityURL searches.
type VanityType int

const (
	VanityIndividual VanityType = 1
	VanityGroup      VanityType = 2
	VanityGameGroup  VanityType = 3
)

// GetAssetClassInfo returns the "result" object describing one asset class.
func (c *Client) GetAssetClassInfo(ctx context.Context, classID string) (any, error) {
	return c.Execute(ctx, "ISteamEconomy/GetAssetClassInfo/v1", RequestConfig{
		Query: map[string]string{
			"appid":       strconv.Itoa(csgoAppID),
			"class_count": "1",
			"classid0":    classID,
		},
		Path: Path("result"),
	})
}

// GetUserProfile returns the player summary for one Steam ID.
func (c *Client) GetUserProfile(ctx context.Context, steamID string) (any, error) {
	return c.Execute(ctx, "ISteamUser/GetPlayerSummaries/v2", RequestConfig{
		Query: map[string]string{"steamids": steamID},
		Path:  Path("response", "players", 0),
	})
}

// GetOwnedGames returns the list of games owned by steamID.
func (c *Client) GetOwnedGames(ctx context.Context, steamID string) (any, error) {
	return c.Execute(ctx, "IPlayerService/GetOwnedGames/v1", RequestConfig{
		Query: map[string]string{"steamid": steamID},
		Path:  Path("response", "games"),
	})
}

// ResolveVanityURL maps a custom URL name to a Steam ID. A zero urlType means
// VanityIndividual.
func (c *Client) ResolveVanityURL(ctx context.Context, vanityURL string, urlType VanityType) (any, error) {
	if urlType == 0 {
		urlType = VanityIndividual
	}
	return c.Execute(ctx, "ISteamUser/ResolveVanityURL/v1", RequestConfig{
		Query: map[string]string{
			"vanityurl": vanityURL,
			"url_type":  strconv.Itoa(int(urlType)),
		},
		Path: Path("response", "steamid"),
	})
}

// GetUserGroups returns the groups steamID belongs to.
func (c *Client) GetUserGroups(ctx context.Context, steamID string) (any, error) {
	return c.Execute(ctx, "ISteamUser/GetUserGroupList/v1", RequestConfig{
		Query: map[string]string{"steamid": steamID},
		Path:  Path("response", "groups"),
	})
}

// GetUserInventory returns the raw inventory document as text. Callers decode it.
func (c *Client) GetUserInventory(ctx context.Context, steamID string) (string, error) {
	v, err := c.Execute(ctx, CommunityBaseURL+"/profiles/"+steamID+"/inventory/json/"+strconv.Itoa(csgoAppID)+"/2", RequestConfig{
		Raw: true,
	})
	if err != nil {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

// GetRSAKey fetches the login RSA key document for username.
func (c *Client) GetRSAKey(ctx context.Context, username string) (any, error) {
	return c.Execute(ctx, CommunityBaseURL+"/login/getrsakey", RequestConfig{
		Query: map[string]string{"username": username},
	})
}

// DoLogin submits login parameters as-is and returns the decoded reply.
func (c *Client) DoLogin(ctx context.Context, params map[string]string) (any, error) {
	return c.Execute(ctx, CommunityBaseURL+"/login/dologin/", RequestConfig{
		Method: MethodPost,
		Query:  params,
	})
}
