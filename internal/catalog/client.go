package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yassinehussein4-cyber/storefront/pkg/config"
	"github.com/yassinehussein4-cyber/storefront/pkg/enums"
	pkgerrors "github.com/yassinehussein4-cyber/storefront/pkg/errors"
	"github.com/yassinehussein4-cyber/storefront/pkg/logger"
	"github.com/yassinehussein4-cyber/storefront/pkg/metrics"
	"github.com/yassinehussein4-cyber/storefront/pkg/pagination"
)

const (
	defaultTimeout      = 8 * time.Second
	contentTypeProduct  = "product"
	contentTypeCategory = "category"
	contentTypeProfile  = "profile"
	includeDepth        = "2"
	// maxEntriesPerRequest is the delivery API's page ceiling.
	maxEntriesPerRequest = 1000
	allProductsPageSize  = 100
	defaultProfileSlug   = "owner"
)

// ClientParams configure the CMS delivery client.
type ClientParams struct {
	Config     config.CMSConfig
	HTTPClient *http.Client
	Logger     *logger.Logger
	Metrics    *metrics.CatalogMetrics
}

// Client reads products, categories and profiles from a Contentful-compatible delivery API.
type Client struct {
	cfg      config.CMSConfig
	http     *http.Client
	logg     *logger.Logger
	metrics  *metrics.CatalogMetrics
	warnOnce sync.Once
}

var _ Store = (*Client)(nil)

// NewClient constructs a delivery client. A client without credentials is valid and serves
// an empty catalog.
func NewClient(params ClientParams) *Client {
	httpClient := params.HTTPClient
	if httpClient == nil {
		timeout := params.Config.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	cfg := params.Config
	if cfg.Environment == "" {
		cfg.Environment = "master"
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = pagination.DefaultLimit
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &Client{
		cfg:     cfg,
		http:    httpClient,
		logg:    logg,
		metrics: params.Metrics,
	}
}

// Configured reports whether the client has credentials to reach the CMS.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.Configured()
}

// ListProducts fetches one page of products with server-side category filter and full-text search.
func (c *Client) ListProducts(ctx context.Context, params ListProductsParams) (ProductPage, error) {
	if !c.ready(ctx) {
		return ProductPage{Items: []Product{}}, nil
	}
	limit := params.Limit
	if limit <= 0 {
		limit = c.cfg.PageLimit
	}
	page := pagination.Params{Page: params.Page, Limit: limit}.Normalize()

	query := url.Values{}
	query.Set("content_type", contentTypeProduct)
	query.Set("include", includeDepth)
	query.Set("limit", strconv.Itoa(page.Limit))
	query.Set("skip", strconv.Itoa(page.Offset()))
	query.Set("order", cmsOrder(params.Sort))
	if id := strings.TrimSpace(params.CategoryID); id != "" && id != AllCategoryID {
		query.Set("fields."+categoryFieldID+".sys.id", id)
	}
	if q := strings.TrimSpace(params.Query); q != "" {
		query.Set("query", q)
	}

	res, err := c.entries(ctx, "list_products", query)
	if err != nil {
		return ProductPage{}, err
	}
	items := make([]Product, 0, len(res.Items))
	for _, it := range res.Items {
		items = append(items, toProduct(it, res.Includes))
	}
	return ProductPage{
		Items:     items,
		Total:     res.Total,
		PageCount: pagination.PageCount(res.Total, page.Limit),
	}, nil
}

// ListAllProducts walks every product page ordered by title.
func (c *Client) ListAllProducts(ctx context.Context) ([]Product, error) {
	if !c.ready(ctx) {
		return []Product{}, nil
	}
	products := []Product{}
	for skip := 0; ; {
		query := url.Values{}
		query.Set("content_type", contentTypeProduct)
		query.Set("include", includeDepth)
		query.Set("order", "fields.title")
		query.Set("limit", strconv.Itoa(allProductsPageSize))
		query.Set("skip", strconv.Itoa(skip))

		res, err := c.entries(ctx, "list_all_products", query)
		if err != nil {
			return nil, err
		}
		for _, it := range res.Items {
			products = append(products, toProduct(it, res.Includes))
		}
		skip += len(res.Items)
		if len(res.Items) == 0 || skip >= res.Total {
			return products, nil
		}
	}
}

// ListCategories fetches every category ordered by title.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	if !c.ready(ctx) {
		return []Category{}, nil
	}
	query := url.Values{}
	query.Set("content_type", contentTypeCategory)
	query.Set("order", "fields.title")
	query.Set("limit", strconv.Itoa(maxEntriesPerRequest))

	res, err := c.entries(ctx, "list_categories", query)
	if err != nil {
		return nil, err
	}
	categories := make([]Category, 0, len(res.Items))
	for _, it := range res.Items {
		categories = append(categories, toCategory(it))
	}
	return categories, nil
}

// GetProfile returns the profile with the given slug, or nil when none exists.
func (c *Client) GetProfile(ctx context.Context, slug string) (*Profile, error) {
	if !c.ready(ctx) {
		return nil, nil
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = defaultProfileSlug
	}
	query := url.Values{}
	query.Set("content_type", contentTypeProfile)
	query.Set("fields.slug", slug)
	query.Set("include", includeDepth)
	query.Set("limit", "1")

	res, err := c.entries(ctx, "get_profile", query)
	if err != nil {
		return nil, err
	}
	if len(res.Items) == 0 {
		return nil, nil
	}
	return toProfile(res.Items[0], res.Includes), nil
}

func (c *Client) ready(ctx context.Context) bool {
	if c.Configured() {
		return true
	}
	c.warnOnce.Do(func() {
		ctx = c.logg.WithField(ctx, "missing", c.cfg.Missing())
		c.logg.Error(ctx, "catalog not configured; serving empty catalog", nil)
	})
	return false
}

func (c *Client) entriesURL() (string, error) {
	return url.JoinPath(c.cfg.BaseURL, "spaces", c.cfg.SpaceID, "environments", c.cfg.Environment, "entries")
}

func (c *Client) entries(ctx context.Context, operation string, query url.Values) (res *entriesResponse, err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveFetch(operation, time.Since(start), err)
	}()

	endpoint, err := c.entriesURL()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build cms url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build cms request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch cms entries")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		cause := fmt.Errorf("cms: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "fetch cms entries").
			WithDetails(map[string]any{"operation": operation, "status": resp.StatusCode})
	}

	var payload entriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode cms entries")
	}
	return &payload, nil
}

func cmsOrder(order enums.SortOrder) string {
	switch order {
	case enums.SortOrderPriceAsc:
		return "fields.price"
	case enums.SortOrderPriceDesc:
		return "-fields.price"
	case enums.SortOrderNameDesc:
		return "-fields.title"
	default:
		return "fields.title"
	}
}
