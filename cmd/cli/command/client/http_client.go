package client

// http_client.go talks to the reviewhub REST API on behalf of the CLI.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reviewhub/internal/microservices/http-api/dto"
)

const apiPrefix = "/api/v1"

// APIError carries the {"error","code"} body the server answers with.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// do sends body as JSON and decodes a 2xx answer into out, which may be nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	target := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		// a body that is not JSON leaves only the status
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func pageQuery(page int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	return q
}

// Auth

func (c *HTTPClient) Signup(ctx context.Context, username, email string) (*dto.SignupResponse, error) {
	var result dto.SignupResponse
	req := dto.SignupRequest{Username: username, Email: email}
	if err := c.do(ctx, http.MethodPost, "/auth/signup", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Token(ctx context.Context, username, code string) (string, error) {
	var result dto.TokenResponse
	req := dto.TokenRequest{Username: username, ConfirmationCode: code}
	if err := c.do(ctx, http.MethodPost, "/auth/token", nil, req, &result); err != nil {
		return "", err
	}
	return result.Token, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*dto.UserResponse, error) {
	var result dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Titles

type TitleFilter struct {
	Name     string
	Genre    string
	Category string
	Year     int
}

func (c *HTTPClient) ListTitles(ctx context.Context, f TitleFilter, page int) (*dto.Paginated[dto.TitleResponse], error) {
	q := pageQuery(page)
	if f.Name != "" {
		q.Set("name", f.Name)
	}
	if f.Genre != "" {
		q.Set("genre", f.Genre)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Year != 0 {
		q.Set("year", strconv.Itoa(f.Year))
	}

	var result dto.Paginated[dto.TitleResponse]
	if err := c.do(ctx, http.MethodGet, "/titles", q, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) GetTitle(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	var result dto.TitleResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/titles/%d", id), nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reviews

func (c *HTTPClient) ListReviews(ctx context.Context, titleID int64, page int) (*dto.Paginated[dto.ReviewResponse], error) {
	var result dto.Paginated[dto.ReviewResponse]
	path := fmt.Sprintf("/titles/%d/reviews", titleID)
	if err := c.do(ctx, http.MethodGet, path, pageQuery(page), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) PostReview(ctx context.Context, titleID int64, text string, score int) (*dto.ReviewResponse, error) {
	var result dto.ReviewResponse
	path := fmt.Sprintf("/titles/%d/reviews", titleID)
	req := dto.ReviewRequest{Text: &text, Score: &score}
	if err := c.do(ctx, http.MethodPost, path, nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) DeleteReview(ctx context.Context, titleID, reviewID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/titles/%d/reviews/%d", titleID, reviewID), nil, nil, nil)
}

// Comments

func (c *HTTPClient) ListComments(ctx context.Context, titleID, reviewID int64, page int) (*dto.Paginated[dto.CommentResponse], error) {
	var result dto.Paginated[dto.CommentResponse]
	path := fmt.Sprintf("/titles/%d/reviews/%d/comments", titleID, reviewID)
	if err := c.do(ctx, http.MethodGet, path, pageQuery(page), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) PostComment(ctx context.Context, titleID, reviewID int64, text string) (*dto.CommentResponse, error) {
	var result dto.CommentResponse
	path := fmt.Sprintf("/titles/%d/reviews/%d/comments", titleID, reviewID)
	if err := c.do(ctx, http.MethodPost, path, nil, dto.CommentRequest{Text: text}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
