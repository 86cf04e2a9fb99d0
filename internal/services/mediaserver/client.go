package mediaserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"newsreel/internal/config"
	"newsreel/internal/logging"
	"newsreel/internal/media"
	"newsreel/internal/services"
)

// HTTPDoer describes the HTTP client used by the media server service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	retryAttempts = 3
	retryDelay    = 500 * time.Millisecond
)

// Client speaks the Jellyfin/Emby Items API and satisfies the collector's
// library source contract.
type Client struct {
	baseURL    string
	serverType string
	token      string
	client     HTTPDoer
	logger     *slog.Logger

	mu        sync.Mutex
	folderIDs map[string]string
}

// New constructs a media server client from configuration.
func New(cfg config.Server, logger *slog.Logger) *Client {
	return NewWithHTTPClient(cfg, &http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second}, logger)
}

// NewWithHTTPClient constructs a client with an explicit HTTP doer. Tests use
// this to point at an httptest server.
func NewWithHTTPClient(cfg config.Server, doer HTTPDoer, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		serverType: cfg.Type,
		token:      cfg.APIToken,
		client:     doer,
		logger:     logging.NewComponentLogger(logger, "mediaserver"),
		folderIDs:  make(map[string]string),
	}
}

// FetchRecent lists every movie and episode under the named library folder
// added at or after since. Virtual placeholder items and items without a
// parseable creation date are skipped.
func (c *Client) FetchRecent(ctx context.Context, folder string, since time.Time) ([]media.RawItem, error) {
	parentID, err := c.resolveFolderID(ctx, folder)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("ParentId", parentID)
	query.Set("Recursive", "true")
	query.Set("IncludeItemTypes", "Movie,Episode")
	query.Set("fields", "DateCreated,ProviderIds,SeriesName,IndexNumber,ParentIndexNumber,ProductionYear,Overview")

	var payload itemsResponse
	if err := c.getJSON(ctx, "/Items?"+query.Encode(), &payload); err != nil {
		return nil, services.Wrap(services.ErrSourceUnavailable, "mediaserver", "list folder items", folder, err)
	}

	items := make([]media.RawItem, 0, len(payload.Items))
	for _, dto := range payload.Items {
		if dto.virtual() {
			c.logger.Debug("skipping virtual item", logging.Args(logging.String("name", dto.Name))...)
			continue
		}
		item, ok := dto.toRawItem(folder)
		if !ok {
			continue
		}
		if item.AddedAt.Before(since) {
			continue
		}
		item.ServerPosterURL = c.ImageURL(dto.posterItemID())
		items = append(items, item)
	}
	c.logger.Debug("folder listed",
		logging.Args(
			logging.String("folder", folder),
			logging.Int("total", payload.TotalRecordCount),
			logging.Int("recent", len(items)),
		)...)
	return items, nil
}

// ImageURL returns the server-hosted primary image URL for an item. The
// endpoint is public per item id on both flavours, so no token appears
// in the URL.
func (c *Client) ImageURL(itemID string) string {
	if itemID == "" {
		return ""
	}
	return c.baseURL + c.pathPrefix() + "/Items/" + url.PathEscape(itemID) + "/Images/Primary"
}

// LibraryTotals counts the movies and series held across the watched
// folders, for the newsletter footer. Limit=0 asks the server for the
// count only.
func (c *Client) LibraryTotals(ctx context.Context, filmFolders, tvFolders []string) (media.LibraryTotals, error) {
	var totals media.LibraryTotals
	for _, folder := range filmFolders {
		count, err := c.countItems(ctx, folder, "Movie")
		if err != nil {
			return media.LibraryTotals{}, err
		}
		totals.Movies += count
	}
	for _, folder := range tvFolders {
		count, err := c.countItems(ctx, folder, "Series")
		if err != nil {
			return media.LibraryTotals{}, err
		}
		totals.Series += count
	}
	return totals, nil
}

func (c *Client) countItems(ctx context.Context, folder, itemType string) (int, error) {
	parentID, err := c.resolveFolderID(ctx, folder)
	if err != nil {
		return 0, err
	}
	query := url.Values{}
	query.Set("ParentId", parentID)
	query.Set("Recursive", "true")
	query.Set("IncludeItemTypes", itemType)
	query.Set("Limit", "0")

	var payload itemsResponse
	if err := c.getJSON(ctx, "/Items?"+query.Encode(), &payload); err != nil {
		return 0, services.Wrap(services.ErrSourceUnavailable, "mediaserver", "count folder items", folder, err)
	}
	return payload.TotalRecordCount, nil
}

// resolveFolderID maps a library folder name to its root item ID. Resolutions
// are cached for the lifetime of the client, which matches one pipeline run.
func (c *Client) resolveFolderID(ctx context.Context, folder string) (string, error) {
	c.mu.Lock()
	if id, ok := c.folderIDs[folder]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	var payload itemsResponse
	if err := c.getJSON(ctx, "/Items", &payload); err != nil {
		return "", services.Wrap(services.ErrSourceUnavailable, "mediaserver", "list root items", folder, err)
	}

	for _, dto := range payload.Items {
		if dto.Name == folder {
			c.mu.Lock()
			c.folderIDs[folder] = dto.ID
			c.mu.Unlock()
			return dto.ID, nil
		}
	}
	return "", services.Wrap(services.ErrSourceUnavailable, "mediaserver", "resolve folder", fmt.Sprintf("library folder %q not found on server", folder), nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	endpoint := c.baseURL + c.pathPrefix() + path
	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("build request: %w", err))
			}
			c.setAuthHeader(req)
			req.Header.Set("Accept", "application/json")

			resp, err := c.client.Do(req)
			if err != nil {
				return fmt.Errorf("media server request: %w", err)
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusOK:
			case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
				return retry.Unrecoverable(fmt.Errorf("media server rejected credentials with status %d", resp.StatusCode))
			case resp.StatusCode >= http.StatusInternalServerError:
				return fmt.Errorf("media server returned status %d", resp.StatusCode)
			default:
				return retry.Unrecoverable(fmt.Errorf("media server returned status %d", resp.StatusCode))
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("read response: %w", err)
			}
			if err := json.Unmarshal(body, out); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

func (c *Client) pathPrefix() string {
	if c.serverType == "emby" {
		return "/emby"
	}
	return ""
}

// setAuthHeader applies the flavour-specific credential header. The token
// value itself is never logged.
func (c *Client) setAuthHeader(req *http.Request) {
	if c.serverType == "emby" {
		req.Header.Set("X-Emby-Token", c.token)
		return
	}
	req.Header.Set("Authorization", fmt.Sprintf("MediaBrowser Token=%q", c.token))
}
