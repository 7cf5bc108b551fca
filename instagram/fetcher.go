package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultGraphURL = "https://graph.instagram.com"

// Media is the Graph API view of a post.
type Media struct {
	ID        string `json:"id"`
	Caption   string `json:"caption"`
	MediaType string `json:"media_type"`
	MediaURL  string `json:"media_url"`
	Permalink string `json:"permalink"`
	Timestamp string `json:"timestamp"`
}

// MediaChild is one entry of a carousel album.
type MediaChild struct {
	ID        string `json:"id"`
	MediaType string `json:"media_type"`
	MediaURL  string `json:"media_url"`
}

// GraphFetcher pulls media metadata from the Instagram Graph API.
type GraphFetcher struct {
	AccessToken string
	BaseURL     string
	Client      *http.Client
}

func NewGraphFetcher(accessToken string, timeout time.Duration) *GraphFetcher {
	return &GraphFetcher{
		AccessToken: accessToken,
		BaseURL:     defaultGraphURL,
		Client:      &http.Client{Timeout: timeout},
	}
}

// FetchMedia loads a post and resolves its image URLs. Albums are filtered to
// image children in provider order; videos are dropped. An empty URL list with
// a nil error means there is nothing to import.
func (f *GraphFetcher) FetchMedia(ctx context.Context, mediaID string) (*Media, []string, error) {
	if f.AccessToken == "" {
		return nil, nil, fmt.Errorf("instagram access token not set")
	}

	var media Media
	endpoint := fmt.Sprintf("%s/%s?fields=id,caption,media_type,media_url,permalink,timestamp&access_token=%s",
		f.BaseURL, url.PathEscape(mediaID), url.QueryEscape(f.AccessToken))
	if err := f.getJSON(ctx, endpoint, &media); err != nil {
		return nil, nil, fmt.Errorf("fetch media %s: %w", mediaID, err)
	}

	switch media.MediaType {
	case "IMAGE":
		return &media, []string{media.MediaURL}, nil
	case "CAROUSEL_ALBUM":
		children, err := f.fetchChildren(ctx, mediaID)
		if err != nil {
			return nil, nil, err
		}
		return &media, ImageURLs(children), nil
	default:
		return nil, nil, fmt.Errorf("unsupported media type %q for %s", media.MediaType, mediaID)
	}
}

func (f *GraphFetcher) fetchChildren(ctx context.Context, mediaID string) ([]MediaChild, error) {
	var out struct {
		Data []MediaChild `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/%s/children?fields=id,media_type,media_url&access_token=%s",
		f.BaseURL, url.PathEscape(mediaID), url.QueryEscape(f.AccessToken))
	if err := f.getJSON(ctx, endpoint, &out); err != nil {
		return nil, fmt.Errorf("fetch children of %s: %w", mediaID, err)
	}
	return out.Data, nil
}

// ImageURLs keeps the image children only, in the order the provider gave.
func ImageURLs(children []MediaChild) []string {
	var urls []string
	for _, child := range children {
		if child.MediaType == "IMAGE" && child.MediaURL != "" {
			urls = append(urls, child.MediaURL)
		}
	}
	return urls
}

func (f *GraphFetcher) getJSON(ctx context.Context, endpoint string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("graph api status %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
