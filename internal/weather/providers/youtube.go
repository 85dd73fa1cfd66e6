package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/places"
)

const youTubeBaseURL = "https://www.googleapis.com/youtube/v3"

// YouTubeProvider implements places.VideoSource on the YouTube Data API search endpoint.
type YouTubeProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewYouTubeProvider(client *http.Client, apiKey string, opts ...Option) *YouTubeProvider {
	o := buildOptions(youTubeBaseURL, opts)

	return &YouTubeProvider{
		name:    "youtube",
		apiKey:  apiKey,
		baseURL: o.baseURL,
		httpCfg: httpConfig(client, o.maxRetries),
		circuit: newCircuitBreaker("youtube", o.logger),
		logger:  o.logger,
	}
}

func (p *YouTubeProvider) Name() string {
	return p.name
}

func (p *YouTubeProvider) SearchVideos(ctx context.Context, query string, max int) ([]places.Video, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("youtube: %w", errMissingAPIKey)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", query)
		values.Set("part", "snippet")
		values.Set("type", "video")
		values.Set("maxResults", strconv.Itoa(max))

		u := fmt.Sprintf("%s/search?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.name, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet struct {
				Title        string `json:"title"`
				ChannelTitle string `json:"channelTitle"`
				PublishedAt  string `json:"publishedAt"`
				Thumbnails   struct {
					High struct {
						URL string `json:"url"`
					} `json:"high"`
				} `json:"thumbnails"`
			} `json:"snippet"`
		} `json:"items"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("youtube: decoding search: %w", err)
	}

	videos := make([]places.Video, 0, len(payload.Items))
	for _, item := range payload.Items {
		videos = append(videos, places.Video{
			ID:           item.ID.VideoID,
			Title:        item.Snippet.Title,
			Thumbnail:    item.Snippet.Thumbnails.High.URL,
			ChannelTitle: item.Snippet.ChannelTitle,
			PublishedAt:  item.Snippet.PublishedAt,
		})
	}

	p.logger.Debug("youtube search done", zap.String("query", query), zap.Int("results", len(videos)))
	return videos, nil
}
