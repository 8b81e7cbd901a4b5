package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"slotcast/internal/models"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "SLOTCAST_HTTP_TIMEOUT"
)

// Client is a simple HTTP client for the slotcast API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: httpTimeoutFromEnv()},
	}
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var resp HealthResponse
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &resp)
	return resp, err
}

func (c *Client) GetSlots(ctx context.Context) (map[string]models.Slot, error) {
	var resp SlotsResponse
	err := c.do(ctx, http.MethodGet, "/api/slots", nil, &resp)
	return resp.Slots, err
}

func (c *Client) GetSlot(ctx context.Context, slotID string) (SlotResponse, error) {
	var resp SlotResponse
	err := c.do(ctx, http.MethodGet, "/api/slots/"+url.PathEscape(slotID), nil, &resp)
	return resp, err
}

func (c *Client) SetSlot(ctx context.Context, slotID string, req SlotUpdateRequest) (SlotResponse, error) {
	var resp SlotResponse
	err := c.do(ctx, http.MethodPut, "/api/slots/"+url.PathEscape(slotID), req, &resp)
	return resp, err
}

func (c *Client) ClearSlot(ctx context.Context, slotID string) (SlotResponse, error) {
	var resp SlotResponse
	err := c.do(ctx, http.MethodDelete, "/api/slots/"+url.PathEscape(slotID), nil, &resp)
	return resp, err
}

func (c *Client) ListScenes(ctx context.Context) ([]models.Scene, error) {
	var resp ScenesResponse
	err := c.do(ctx, http.MethodGet, "/api/scenes", nil, &resp)
	return resp.Scenes, err
}

func (c *Client) GetScene(ctx context.Context, id int64) (models.Scene, error) {
	var resp models.Scene
	err := c.do(ctx, http.MethodGet, "/api/scenes/"+formatSceneID(id), nil, &resp)
	return resp, err
}

func (c *Client) CreateScene(ctx context.Context, req SceneCreateRequest) (models.Scene, error) {
	var resp models.Scene
	err := c.do(ctx, http.MethodPost, "/api/scenes", req, &resp)
	return resp, err
}

func (c *Client) UpdateScene(ctx context.Context, id int64, req SceneUpdateRequest) (models.Scene, error) {
	var resp models.Scene
	err := c.do(ctx, http.MethodPut, "/api/scenes/"+formatSceneID(id), req, &resp)
	return resp, err
}

func (c *Client) DeleteScene(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/scenes/"+formatSceneID(id), nil, nil)
}

func (c *Client) LoadScene(ctx context.Context, id int64) (SceneLoadResponse, error) {
	var resp SceneLoadResponse
	err := c.do(ctx, http.MethodPost, "/api/scenes/"+formatSceneID(id)+"/load", nil, &resp)
	return resp, err
}

func (c *Client) CaptureScene(ctx context.Context, id int64) (SceneCaptureResponse, error) {
	var resp SceneCaptureResponse
	err := c.do(ctx, http.MethodPost, "/api/scenes/"+formatSceneID(id)+"/capture", nil, &resp)
	return resp, err
}

func (c *Client) ListImages(ctx context.Context) ([]models.Image, error) {
	var resp ImagesResponse
	err := c.do(ctx, http.MethodGet, "/api/images", nil, &resp)
	return resp.Images, err
}

func (c *Client) AddImageURL(ctx context.Context, req ImageURLRequest) (models.Image, error) {
	var resp models.Image
	err := c.do(ctx, http.MethodPost, "/api/images/url", req, &resp)
	return resp, err
}

func (c *Client) DeleteImage(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/images/"+strconv.FormatInt(id, 10), nil, nil)
}

// UploadImage streams a multipart upload to the image endpoint.
func (c *Client) UploadImage(ctx context.Context, filename string, content io.Reader) (models.Image, error) {
	var resp models.Image

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return resp, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return resp, err
	}
	if err := mw.Close(); err != nil {
		return resp, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/images/upload", &buf)
	if err != nil {
		return resp, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	httpResp, err := c.http.Do(req)
	if err != nil {
		return resp, err
	}
	defer httpResp.Body.Close()

	err = decodeEnvelope(httpResp, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp, out)
}

// rawResponse mirrors Response with the data payload left undecoded.
type rawResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorBody      `json:"error"`
}

func decodeEnvelope(resp *http.Response, out any) error {
	var envelope rawResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{Status: resp.StatusCode, Message: resp.Status}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 400 || !envelope.Success {
		apiErr := &APIError{Status: resp.StatusCode}
		if envelope.Error != nil {
			apiErr.Message = envelope.Error.Message
			apiErr.Code = envelope.Error.Code
			apiErr.ErrorCode = envelope.Error.ErrorCode
		}
		return apiErr
	}

	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}

func formatSceneID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func httpTimeoutFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if raw == "" {
		return defaultHTTPTimeout
	}
	if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return defaultHTTPTimeout
}
