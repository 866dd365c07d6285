// Package uploadclient implements the two-phase upload flow against a running
// VidChill backend: request a signed URL, PUT the bytes straight to object
// storage, then register the video record. It backs the `vidchill upload`
// subcommand and doubles as an end-to-end exerciser for the upload surface.
package uploadclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to a VidChill backend and its object storage.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient constructs a Client for the backend at baseURL, authenticating
// with the provided session token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL + "/api/v1",
		token:   token,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

type signResponse struct {
	SignedURL string `json:"signedUrl"`
	Key       string `json:"key"`
}

type videoResponse struct {
	ID       string `json:"id"`
	VideoURL string `json:"videoUrl"`
	Title    string `json:"title"`
}

// Upload pushes content to object storage and registers the resulting video.
// If the storage PUT fails no record is created; the signed grant simply
// expires unused.
func (c *Client) Upload(ctx context.Context, userID, fileName, contentType string, content io.Reader) (string, error) {
	signed, err := c.sign(ctx, userID, fileName, contentType)
	if err != nil {
		return "", err
	}

	if err := c.put(ctx, signed.SignedURL, contentType, content); err != nil {
		return "", fmt.Errorf("upload to storage: %w", err)
	}

	video, err := c.createVideo(ctx, userID, signed.Key)
	if err != nil {
		return "", err
	}
	return video.ID, nil
}

func (c *Client) sign(ctx context.Context, userID, fileName, contentType string) (signResponse, error) {
	body := map[string]string{
		"userId":   userID,
		"fileName": fileName,
		"fileType": contentType,
	}

	resp, err := c.post(ctx, "/uploads/sign", body)
	if err != nil {
		return signResponse{}, fmt.Errorf("sign request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return signResponse{}, fmt.Errorf("sign failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var signed signResponse
	if err := json.NewDecoder(resp.Body).Decode(&signed); err != nil {
		return signResponse{}, fmt.Errorf("failed to decode sign response: %w", err)
	}
	if signed.SignedURL == "" || signed.Key == "" {
		return signResponse{}, fmt.Errorf("sign response missing url or key")
	}
	return signed, nil
}

func (c *Client) put(ctx context.Context, url, contentType string, content io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, content)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("storage put failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}

func (c *Client) createVideo(ctx context.Context, userID, key string) (videoResponse, error) {
	body := map[string]string{
		"userId":   userID,
		"videoUrl": key,
	}

	resp, err := c.post(ctx, "/videos", body)
	if err != nil {
		return videoResponse{}, fmt.Errorf("create video request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return videoResponse{}, fmt.Errorf("create video failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var video videoResponse
	if err := json.NewDecoder(resp.Body).Decode(&video); err != nil {
		return videoResponse{}, fmt.Errorf("failed to decode video response: %w", err)
	}
	return video, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}
