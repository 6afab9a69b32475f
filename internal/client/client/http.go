package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/netx"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenSource) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, authorized bool, in, out any) error {
	var header http.Header
	if authorized && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			header = http.Header{}
			header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
		}
	}
	return mapError(netx.DoJSON(ctx, c.http, method, c.baseURL+path, header, in, out))
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", false, nil, nil)
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	in := map[string]string{"name": name, "email": email, "password": password}
	var out struct {
		Message string       `json:"message"`
		User    *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/register", false, in, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	in := map[string]string{"email": email, "password": password}
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", false, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", true, nil, nil)
}

func (c *HTTPClient) ListTasks(ctx context.Context, page, limit int) (*models.TaskPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var out models.TaskPage
	if err := c.do(ctx, http.MethodGet, "/tasks?"+q.Encode(), true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateTask(ctx context.Context, title string) (*models.Task, error) {
	var out models.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", true, map[string]string{"title": title}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var out models.Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateTask(ctx context.Context, id string, upd models.TaskUpdate) (*models.Task, error) {
	var out models.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), true, upd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), true, nil, nil)
}
