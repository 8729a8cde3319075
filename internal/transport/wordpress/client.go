// Package wordpress клиент API плагина, установленного на WordPress-сайтах площадок.
package wordpress

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const (
	RouteCreateArticle = "/wp-json/link-manager/v1/create-article"
	RouteDeleteArticle = "/wp-json/link-manager/v1/delete-article"

	APIKeyHeader = "X-LM-API-Key"

	DefaultTimeout = 10 * time.Second
)

type createArticleRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Slug    string `json:"slug,omitempty"`
}

type deleteArticleRequest struct {
	PostID int64 `json:"post_id"`
}

type pluginResponse struct {
	Success bool   `json:"success"`
	PostID  int64  `json:"post_id,omitempty"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (r *pluginResponse) reason() string {
	if r.Error != "" {
		return r.Error
	}
	return r.Message
}

// Client реализует публикацию статей через плагин. Повторы не выполняются: повторять операцию целиком
// решает вызывающий.
type Client struct {
	http *resty.Client
}

func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

// Publish создает статью на сайте и возвращает id поста WordPress.
func (c *Client) Publish(ctx context.Context, siteURL, apiKey string, post domain.PostContent) (int64, error) {
	res, err := c.call(ctx, siteURL, RouteCreateArticle, apiKey, createArticleRequest{
		Title:   post.Title,
		Content: post.Body,
		Slug:    post.Slug,
	})
	if err != nil {
		return 0, errors.Wrap(err, "create article")
	}
	if res.PostID <= 0 {
		return 0, errors.Errorf("create article: plugin returned post id %d", res.PostID)
	}
	return res.PostID, nil
}

// DeletePost удаляет ранее опубликованную статью.
func (c *Client) DeletePost(ctx context.Context, siteURL, apiKey string, postID int64) error {
	if _, err := c.call(ctx, siteURL, RouteDeleteArticle, apiKey, deleteArticleRequest{PostID: postID}); err != nil {
		return errors.Wrapf(err, "delete article %d", postID)
	}
	return nil
}

func (c *Client) call(ctx context.Context, siteURL, route, apiKey string, body any) (*pluginResponse, error) {
	var result pluginResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(APIKeyHeader, apiKey).
		SetBody(body).
		SetResult(&result).
		SetError(&result).
		Post(strings.TrimRight(siteURL, "/") + route)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}

	// Статус отличный от 2xx считаем ошибкой сайта.
	if !resp.IsSuccess() {
		return nil, NewStatusCodeError(resp.StatusCode(), responseReason(resp, &result))
	}
	if !result.Success {
		return nil, &RejectedError{Message: result.reason()}
	}
	return &result, nil
}

func responseReason(resp *resty.Response, parsed *pluginResponse) string {
	if reason := parsed.reason(); reason != "" {
		return reason
	}
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return "invalid api key"
	}
	const maxBody = 256
	body := string(resp.Body())
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	return body
}
