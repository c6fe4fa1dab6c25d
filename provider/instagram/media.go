package instagram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// Media is one item from the account's media feed. Timestamp is kept
// verbatim; Instagram emits offsets without a colon, which RFC 3339
// decoding rejects.
type Media struct {
	ID        string `json:"id"`
	Caption   string `json:"caption"`
	MediaType string `json:"media_type"`
	MediaURL  string `json:"media_url"`
	Permalink string `json:"permalink"`
	Timestamp string `json:"timestamp"`
}

// CreateMedia uploads an image as a media container and returns the
// container id. Publishing is a separate step.
func (p *Provider) CreateMedia(ctx context.Context, accessToken, imageURL, caption string) (string, error) {
	endpoint := p.config.APIBase + "/me/media"
	data := url.Values{
		"image_url":    {imageURL},
		"caption":      {caption},
		"access_token": {accessToken},
	}

	body, status, err := p.postForm(ctx, endpoint, data)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", providerError("create media", status, apiErrorMessage(body), nil)
	}

	var container struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &container); err != nil {
		return "", providerError("create media", status, "failed to decode container response", err)
	}
	if container.ID == "" {
		return "", providerError("create media", status, "missing container id", nil)
	}
	return container.ID, nil
}

// PublishMedia publishes a previously created media container and
// returns the published media id.
func (p *Provider) PublishMedia(ctx context.Context, accessToken, creationID string) (string, error) {
	endpoint := p.config.APIBase + "/me/media_publish"
	data := url.Values{
		"creation_id":  {creationID},
		"access_token": {accessToken},
	}

	body, status, err := p.postForm(ctx, endpoint, data)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", providerError("publish media", status, apiErrorMessage(body), nil)
	}

	var published struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &published); err != nil {
		return "", providerError("publish media", status, "failed to decode publish response", err)
	}
	if published.ID == "" {
		return "", providerError("publish media", status, "missing media id", nil)
	}
	return published.ID, nil
}

// RecentMedia fetches the account's most recent media items.
func (p *Provider) RecentMedia(ctx context.Context, accessToken string, limit int) ([]Media, error) {
	if limit <= 0 {
		limit = 25
	}

	endpoint := p.config.APIBase + "/me/media?" + url.Values{
		"fields":       {"id,caption,media_type,media_url,permalink,timestamp"},
		"limit":        {strconv.Itoa(limit)},
		"access_token": {accessToken},
	}.Encode()

	body, status, err := p.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, providerError("recent media", status, apiErrorMessage(body), nil)
	}

	var feed struct {
		Data []Media `json:"data"`
	}
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, providerError("recent media", status, "failed to decode media response", err)
	}
	return feed.Data, nil
}
