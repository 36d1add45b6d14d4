package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"trivia-visualizer/internal/domain"
)

// DefaultBaseURL is the public Open Trivia DB endpoint.
const DefaultBaseURL = "https://opentdb.com"

// MinQuestionAmount is the smallest batch requested from the service.
const MinQuestionAmount = 50

const defaultTimeout = 15 * time.Second

// QuestionQuery holds the optional filters of a question request.
// Zero values are omitted from the outgoing query.
type QuestionQuery struct {
	Amount     int
	Category   int
	Difficulty domain.Difficulty
	Type       domain.QuestionType
}

// Client talks to Open Trivia DB and owns the session token for its lifetime.
type Client struct {
	baseURL string
	http    *http.Client
	sf      singleflight.Group

	mu    sync.Mutex
	token string
}

// NewClient builds a client against baseURL. A nil httpClient gets a default with timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type categoriesResponse struct {
	TriviaCategories []domain.Category `json:"trivia_categories"`
}

type tokenResponse struct {
	ResponseCode *int   `json:"response_code"`
	Token        string `json:"token"`
}

type questionsResponse struct {
	ResponseCode *int              `json:"response_code"`
	Results      []domain.Question `json:"results"`
}

// FetchCategories returns the category catalog unchanged.
func (c *Client) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	var body categoriesResponse
	if err := c.getJSON(ctx, "/api_category.php", nil, &body); err != nil {
		return nil, err
	}
	return body.TriviaCategories, nil
}

// SessionToken returns the cached token or requests a new one.
func (c *Client) SessionToken(ctx context.Context) (string, error) {
	if token := c.currentToken(); token != "" {
		return token, nil
	}

	result, err, _ := c.sf.Do("token", func() (interface{}, error) {
		if token := c.currentToken(); token != "" {
			return token, nil
		}
		var body tokenResponse
		if err := c.getJSON(ctx, "/api_token.php", url.Values{"command": {"request"}}, &body); err != nil {
			return "", err
		}
		code := responseCode(body.ResponseCode)
		if code != domain.CodeSuccess || body.Token == "" {
			if code == domain.CodeSuccess {
				code = -1
			}
			return "", &domain.APIError{Code: code, Message: "Failed to get session token"}
		}
		c.setToken(body.Token)
		return body.Token, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// ResetSessionToken asks the service to reset the cached token. Any failure clears
// the token so the next request acquires a fresh one.
func (c *Client) ResetSessionToken(ctx context.Context) {
	token := c.currentToken()
	if token == "" {
		return
	}

	var body tokenResponse
	err := c.getJSON(ctx, "/api_token.php", url.Values{"command": {"reset"}, "token": {token}}, &body)
	if err != nil {
		log.Printf("reset session token: %v", err)
		c.clearToken(token)
		return
	}
	if responseCode(body.ResponseCode) != domain.CodeSuccess {
		c.clearToken(token)
	}
}

// FetchQuestions requests at least MinQuestionAmount questions. The results are
// returned as served, still HTML-encoded.
func (c *Client) FetchQuestions(ctx context.Context, q QuestionQuery) ([]domain.Question, error) {
	amount := q.Amount
	if amount < MinQuestionAmount {
		amount = MinQuestionAmount
	}

	params := url.Values{}
	params.Set("amount", strconv.Itoa(amount))
	if q.Category > 0 {
		params.Set("category", strconv.Itoa(q.Category))
	}
	if q.Difficulty != "" {
		params.Set("difficulty", string(q.Difficulty))
	}
	if q.Type != "" {
		params.Set("type", string(q.Type))
	}

	// Without a token the service may repeat questions across requests.
	token, err := c.SessionToken(ctx)
	if err != nil {
		log.Printf("session token unavailable, continuing without: %v", err)
	}
	if token != "" {
		params.Set("token", token)
	}

	var body questionsResponse
	if err := c.getJSON(ctx, "/api.php", params, &body); err != nil {
		return nil, err
	}
	if err := c.checkResponseCode(ctx, responseCode(body.ResponseCode), token); err != nil {
		return nil, err
	}
	return body.Results, nil
}

func (c *Client) checkResponseCode(ctx context.Context, code int, token string) error {
	switch code {
	case domain.CodeSuccess:
		return nil
	case domain.CodeNoResults:
		return &domain.APIError{Code: code, Message: "No results found for the query"}
	case domain.CodeInvalidParameter:
		return &domain.APIError{Code: code, Message: "Invalid parameters provided"}
	case domain.CodeTokenNotFound:
		c.clearToken(token)
		return &domain.APIError{Code: code, Message: "Session token not found"}
	case domain.CodeTokenEmpty:
		c.ResetSessionToken(ctx)
		return &domain.APIError{Code: code, Message: "Session token has no more questions"}
	case domain.CodeRateLimit:
		return &domain.APIError{Code: code, Message: "Rate limit exceeded. Please wait before making another request"}
	default:
		return &domain.APIError{Code: code, Message: "Unknown API error"}
	}
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.TransportError{Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// clearToken drops the cached token only if it is still the one the caller used,
// so a token acquired concurrently is not thrown away.
func (c *Client) clearToken(used string) {
	c.mu.Lock()
	if c.token == used {
		c.token = ""
	}
	c.mu.Unlock()
}

// A body without a response code is treated as an unknown failure.
func responseCode(code *int) int {
	if code == nil {
		return -1
	}
	return *code
}
