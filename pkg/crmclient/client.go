// Package crmclient talks to the CRM GraphQL endpoint over HTTP. Scheduled jobs
// use it so they exercise the same contract external callers see.
package crmclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/machinebox/graphql"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/crm-backend/pkg/config"
)

const (
	defaultTimeout  = 20 * time.Second
	defaultPageSize = 500
	defaultMaxPages = 1000
)

// ErrPageLimit is returned when a traversal hits the page cap before the
// connection reports its last page.
var ErrPageLimit = errors.New("crmclient: page limit reached")

type Options struct {
	Endpoint string
	Timeout  time.Duration
	PageSize int
	MaxPages int
	// HTTPClient overrides the default client built from Timeout.
	HTTPClient *http.Client
}

type Client struct {
	gql      *graphql.Client
	timeout  time.Duration
	pageSize int
	maxPages int
}

func New(opts Options) (*Client, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("graphql endpoint required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = defaultMaxPages
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		gql:      graphql.NewClient(endpoint, graphql.WithHTTPClient(httpClient)),
		timeout:  opts.Timeout,
		pageSize: opts.PageSize,
		maxPages: opts.MaxPages,
	}, nil
}

// NewFromConfig builds the client the scheduled jobs use. Order traversals page
// by CRM_REPORT_PAGE_SIZE.
func NewFromConfig(cfg *config.Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	return New(Options{
		Endpoint: cfg.GraphQL.Endpoint,
		Timeout:  cfg.GraphQL.Timeout,
		PageSize: cfg.Cron.ReportPageSize,
	})
}

func (c *Client) run(ctx context.Context, query string, vars map[string]any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := graphql.NewRequest(query)
	for k, v := range vars {
		req.Var(k, v)
	}
	if err := c.gql.Run(ctx, req, out); err != nil {
		return err
	}
	return nil
}

type pageInfo struct {
	HasNextPage bool    `json:"hasNextPage"`
	EndCursor   *string `json:"endCursor"`
}

// Cursor is the continuation token of a connection traversal.
type Cursor struct {
	After string
	Done  bool
}

func (c Cursor) next(info pageInfo) Cursor {
	if !info.HasNextPage || info.EndCursor == nil || *info.EndCursor == "" {
		return Cursor{Done: true}
	}
	return Cursor{After: *info.EndCursor}
}

// walkPages calls fetch with successive cursors until the connection is
// exhausted or the page cap is hit.
func (c *Client) walkPages(ctx context.Context, fetch func(ctx context.Context, cur Cursor) (pageInfo, error)) error {
	cur := Cursor{}
	for page := 0; page < c.maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		info, err := fetch(ctx, cur)
		if err != nil {
			return err
		}
		cur = cur.next(info)
		if cur.Done {
			return nil
		}
	}
	return ErrPageLimit
}

func afterVar(cur Cursor) any {
	if cur.After == "" {
		return nil
	}
	return cur.After
}

// Hello performs the liveness query.
func (c *Client) Hello(ctx context.Context) (string, error) {
	var resp struct {
		Hello string `json:"hello"`
	}
	if err := c.run(ctx, `query { hello }`, nil, &resp); err != nil {
		return "", err
	}
	return resp.Hello, nil
}

type ProductStock struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

type LowStockResult struct {
	OK       bool           `json:"ok"`
	Message  string         `json:"message"`
	Products []ProductStock `json:"products"`
}

// UpdateLowStock runs the restock mutation.
func (c *Client) UpdateLowStock(ctx context.Context) (*LowStockResult, error) {
	var resp struct {
		UpdateLowStockProducts *LowStockResult `json:"updateLowStockProducts"`
	}
	const mutation = `mutation { updateLowStockProducts { ok message products { id name stock } } }`
	if err := c.run(ctx, mutation, nil, &resp); err != nil {
		return nil, err
	}
	if resp.UpdateLowStockProducts == nil {
		return nil, fmt.Errorf("updateLowStockProducts returned no payload")
	}
	return resp.UpdateLowStockProducts, nil
}

type OrderSummary struct {
	ID            string
	CustomerEmail string
	OrderDate     time.Time
	TotalAmount   decimal.Decimal
}

type orderNode struct {
	ID          string          `json:"id"`
	OrderDate   time.Time       `json:"orderDate"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Customer    *struct {
		Email string `json:"email"`
	} `json:"customer"`
}

const ordersQuery = `query($first: Int, $after: String, $filter: OrderFilter) {
  allOrders(first: $first, after: $after, filter: $filter, orderBy: ["orderDate"]) {
    edges { node { id orderDate totalAmount customer { email } } }
    pageInfo { hasNextPage endCursor }
  }
}`

// EachOrder walks allOrders, optionally restricted to orders on or after since,
// and hands every order to fn in orderDate order.
func (c *Client) EachOrder(ctx context.Context, since *time.Time, fn func(OrderSummary) error) error {
	var filter map[string]any
	if since != nil {
		filter = map[string]any{"orderDateGte": since.UTC().Format(time.RFC3339)}
	}
	return c.walkPages(ctx, func(ctx context.Context, cur Cursor) (pageInfo, error) {
		var resp struct {
			AllOrders struct {
				Edges []struct {
					Node orderNode `json:"node"`
				} `json:"edges"`
				PageInfo pageInfo `json:"pageInfo"`
			} `json:"allOrders"`
		}
		vars := map[string]any{"first": c.pageSize, "after": afterVar(cur), "filter": filter}
		if err := c.run(ctx, ordersQuery, vars, &resp); err != nil {
			return pageInfo{}, err
		}
		for _, edge := range resp.AllOrders.Edges {
			summary := OrderSummary{
				ID:          edge.Node.ID,
				OrderDate:   edge.Node.OrderDate,
				TotalAmount: edge.Node.TotalAmount,
			}
			if edge.Node.Customer != nil {
				summary.CustomerEmail = edge.Node.Customer.Email
			}
			if err := fn(summary); err != nil {
				return pageInfo{}, err
			}
		}
		return resp.AllOrders.PageInfo, nil
	})
}

// CountCustomers reads the customer connection's total count.
func (c *Client) CountCustomers(ctx context.Context) (int, error) {
	var resp struct {
		AllCustomers struct {
			TotalCount int `json:"totalCount"`
		} `json:"allCustomers"`
	}
	if err := c.run(ctx, `query { allCustomers(first: 1) { totalCount } }`, nil, &resp); err != nil {
		return 0, err
	}
	return resp.AllCustomers.TotalCount, nil
}

// OrderTotals traverses every order and returns the count and summed revenue.
func (c *Client) OrderTotals(ctx context.Context) (int, decimal.Decimal, error) {
	count := 0
	revenue := decimal.Zero
	err := c.EachOrder(ctx, nil, func(o OrderSummary) error {
		count++
		revenue = revenue.Add(o.TotalAmount)
		return nil
	})
	if err != nil {
		return 0, decimal.Zero, err
	}
	return count, revenue, nil
}
