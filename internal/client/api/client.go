package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/iudanet/draftkeeper/internal/autosave"
	"github.com/iudanet/draftkeeper/pkg/api"
)

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu          sync.RWMutex
	accessToken string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовок Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// SetAccessToken устанавливает токен для авторизованных запросов
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

func (c *Client) getAccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	var resp api.RegisterResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/register", req, &resp)
	if err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// GetSalt получает public_salt пользователя
func (c *Client) GetSalt(ctx context.Context, username string) (*api.SaltResponse, error) {
	var resp api.SaltResponse
	url := fmt.Sprintf("/api/v1/auth/salt/%s", username)
	err := c.doRequest(ctx, http.MethodGet, url, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("get salt request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", req, &resp)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Refresh обменивает refresh token на новую пару токенов
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	err := c.doRequestWithToken(ctx, http.MethodPost, "/api/v1/auth/refresh", refreshToken, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// Logout отзывает refresh tokens пользователя на сервере
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doAuthorized(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Ping проверяет доступность сервера. Используется как проба соединения
// для offline-детекции
func (c *Client) Ping(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodGet, "/api/v1/health", nil, nil)
}

// CreateDocument создает новый документ
func (c *Client) CreateDocument(ctx context.Context, title string) (*api.DocumentResponse, error) {
	var resp api.DocumentResponse
	req := api.CreateDocumentRequest{Title: title}
	err := c.doAuthorized(ctx, http.MethodPost, "/api/v1/documents", req, &resp)
	if err != nil {
		return nil, fmt.Errorf("create document request failed: %w", err)
	}
	return &resp, nil
}

// ListDocuments возвращает документы пользователя
func (c *Client) ListDocuments(ctx context.Context) (*api.DocumentListResponse, error) {
	var resp api.DocumentListResponse
	err := c.doAuthorized(ctx, http.MethodGet, "/api/v1/documents", nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("list documents request failed: %w", err)
	}
	return &resp, nil
}

// GetDocument возвращает документ с текущим черновиком и токеном версии
func (c *Client) GetDocument(ctx context.Context, documentID string) (*api.DocumentResponse, error) {
	var resp api.DocumentResponse
	url := fmt.Sprintf("/api/v1/documents/%s", documentID)
	err := c.doAuthorized(ctx, http.MethodGet, url, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("get document request failed: %w", err)
	}
	return &resp, nil
}

// DeleteDocument удаляет документ вместе со снапшотами
func (c *Client) DeleteDocument(ctx context.Context, documentID string) error {
	url := fmt.Sprintf("/api/v1/documents/%s", documentID)
	if err := c.doAuthorized(ctx, http.MethodDelete, url, nil, nil); err != nil {
		return fmt.Errorf("delete document request failed: %w", err)
	}
	return nil
}

// CreateCheckpoint создает именованный снапшот текущего черновика
func (c *Client) CreateCheckpoint(ctx context.Context, documentID, name string) (*api.CheckpointResponse, error) {
	var resp api.CheckpointResponse
	url := fmt.Sprintf("/api/v1/documents/%s/checkpoints", documentID)
	req := api.CreateCheckpointRequest{Name: name}
	err := c.doAuthorized(ctx, http.MethodPost, url, req, &resp)
	if err != nil {
		return nil, fmt.Errorf("create checkpoint request failed: %w", err)
	}
	return &resp, nil
}

// ListCheckpoints возвращает снапшоты документа
func (c *Client) ListCheckpoints(ctx context.Context, documentID string) (*api.CheckpointListResponse, error) {
	var resp api.CheckpointListResponse
	url := fmt.Sprintf("/api/v1/documents/%s/checkpoints", documentID)
	err := c.doAuthorized(ctx, http.MethodGet, url, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints request failed: %w", err)
	}
	return &resp, nil
}

// SaveDraft сохраняет черновик документа с проверкой версии.
// В отличие от остальных методов возвращает типизированные ошибки
// autosave.Error: движок автосохранения выбирает retry-политику по Kind,
// а не по тексту сообщения
func (c *Client) SaveDraft(ctx context.Context, documentID, content, versionToken string) (*api.SaveDraftResponse, error) {
	url := fmt.Sprintf("%s/api/v1/documents/%s/draft", c.baseURL, documentID)

	body, err := json.Marshal(api.SaveDraftRequest{Content: content, VersionToken: versionToken})
	if err != nil {
		return nil, autosave.NewError(autosave.KindUnknown, fmt.Errorf("failed to marshal draft: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return nil, autosave.NewError(autosave.KindUnknown, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.getAccessToken())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, autosave.NewError(autosave.KindTimeout, err)
		}
		return nil, autosave.NewError(autosave.KindNetwork, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, autosave.NewError(autosave.KindNetwork, fmt.Errorf("failed to read response body: %w", err))
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var saved api.SaveDraftResponse
		if err := json.Unmarshal(respBody, &saved); err != nil {
			return nil, autosave.NewError(autosave.KindUnknown, fmt.Errorf("failed to decode response: %w", err))
		}
		return &saved, nil

	case resp.StatusCode == http.StatusConflict:
		var conflict api.ConflictResponse
		if err := json.Unmarshal(respBody, &conflict); err != nil {
			return nil, autosave.NewError(autosave.KindUnknown, fmt.Errorf("failed to decode conflict response: %w", err))
		}
		return nil, &autosave.Error{
			Kind:     autosave.KindConflict,
			Conflict: conflict,
			Err:      fmt.Errorf("version token rejected: %s", conflict.Message),
		}

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, autosave.NewError(autosave.KindAuth, serverError(resp.StatusCode, respBody))

	default:
		return nil, autosave.NewError(autosave.KindUnknown, serverError(resp.StatusCode, respBody))
	}
}

// doAuthorized выполняет запрос с текущим access token
func (c *Client) doAuthorized(ctx context.Context, method, path string, body, result interface{}) error {
	return c.doRequestWithToken(ctx, method, path, c.getAccessToken(), body, result)
}

// doRequest выполняет запрос без авторизации
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	return c.doRequestWithToken(ctx, method, path, "", body, result)
}

func (c *Client) doRequestWithToken(ctx context.Context, method, path, token string, body, result interface{}) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return serverError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// serverError формирует ошибку из тела неуспешного ответа
func serverError(statusCode int, body []byte) error {
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("server error (%d): %s", statusCode, errResp.Error)
	}
	return fmt.Errorf("request failed with status %d: %s", statusCode, string(body))
}
