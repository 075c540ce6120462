// Package backend talks to the advising chatbot's HTTP API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"advisorbot/internal/model"
)

const DefaultChatPath = "/chat"

type Client struct {
	baseURL    string
	chatPath   string
	httpClient *http.Client
}

type ProfileUpdate struct {
	Name      string `json:"name"`
	StudentID string `json:"studentId"`
	Major     string `json:"major"`
}

func NewClient(baseURL, chatPath string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	if strings.TrimSpace(chatPath) == "" {
		chatPath = DefaultChatPath
	}
	if !strings.HasPrefix(chatPath, "/") {
		chatPath = "/" + chatPath
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		chatPath:   chatPath,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// ResolveURL prefixes relative paths returned by the backend with the base URL.
func (c *Client) ResolveURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Chat sends one query. An empty token sends no Authorization header.
func (c *Client) Chat(ctx context.Context, token, query, sessionID string) (*ChatReply, error) {
	raw, err := c.doJSON(ctx, http.MethodPost, c.chatPath, token, map[string]string{
		"query":      query,
		"session_id": sessionID,
	})
	if err != nil {
		return nil, err
	}
	return DecodeChatReply(raw)
}

func (c *Client) History(ctx context.Context, token string) ([]model.HistoryRecord, error) {
	raw, err := c.do(ctx, http.MethodGet, "/chat-history", token, nil, "")
	if err != nil {
		return nil, err
	}
	return decodeHistory(raw)
}

func (c *Client) ResetHistory(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodPost, "/reset-history", token, nil, "")
	return err
}

func (c *Client) Register(ctx context.Context, email, password string) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/api/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	return err
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	raw, err := c.doJSON(ctx, http.MethodPost, "/api/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	var parsed loginResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnrecognizedResponse, err)
	}
	if parsed.AccessToken == "" {
		return "", ErrUnrecognizedResponse
	}
	return parsed.AccessToken, nil
}

func (c *Client) Profile(ctx context.Context, token string) (*model.Profile, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/profile", token, nil, "")
	if err != nil {
		return nil, err
	}
	var profile model.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decode profile failed: %w", err)
	}
	return &profile, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) error {
	_, err := c.doJSON(ctx, http.MethodPut, "/api/profile", token, update)
	return err
}

func (c *Client) ChangePassword(ctx context.Context, token, current, next string) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/api/change-password", token, map[string]string{
		"currentPassword": current,
		"newPassword":     next,
	})
	return err
}

func (c *Client) UploadProfilePicture(ctx context.Context, token, filename string, file io.Reader) (*UploadResult, error) {
	return c.upload(ctx, "/api/upload-profile-picture", "profilePicture", token, filename, file)
}

func (c *Client) UploadFile(ctx context.Context, token, filename string, file io.Reader) (*UploadResult, error) {
	return c.upload(ctx, "/api/upload-file", "file", token, filename, file)
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/ping", "", nil, "")
	return err
}

func (c *Client) upload(ctx context.Context, path, field, token, filename string, file io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart body failed: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy upload body failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body failed: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, path, token, &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	var result UploadResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedResponse, err)
	}
	if result.URL == "" && result.Filename == "" {
		return nil, ErrUnrecognizedResponse
	}
	if result.Filename == "" {
		result.Filename = filename
	}
	result.URL = c.ResolveURL(result.URL)
	return &result, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, body any) ([]byte, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}
	return c.do(ctx, method, path, token, bytes.NewReader(bodyBytes), "application/json")
}

func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request failed: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %v", ErrUnavailable, path, err)
	}
	if resp.StatusCode >= 300 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(resp.StatusCode, resp.Header.Get("Content-Type"), raw),
		}
	}
	return raw, nil
}
