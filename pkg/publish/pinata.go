// Package publish makes the engine's settlement logic independently
// verifiable: it computes content ids and pins the code to IPFS through
// a Pinata-compatible endpoint. It is not part of the protocol's
// runtime data path.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// DefaultBaseURL is the public Pinata pinning API
const DefaultBaseURL = "https://api.pinata.cloud"

// Client pins content to IPFS via the Pinata HTTP API
type Client struct {
	baseURL string
	jwt     string
	http    *http.Client
}

// NewClient creates a pinning client. baseURL falls back to the public
// endpoint when empty.
func NewClient(baseURL, jwt string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		jwt:     jwt,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

// Pin uploads the content under the given name and returns the content
// id the service assigned
func (c *Client) Pin(ctx context.Context, name string, content []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("failed to write upload content: %w", err)
	}

	metadata, _ := json.Marshal(map[string]string{"name": name})
	if err := writer.WriteField("pinataMetadata", string(metadata)); err != nil {
		return "", fmt.Errorf("failed to write upload metadata: %w", err)
	}
	options, _ := json.Marshal(map[string]int{"cidVersion": 0})
	if err := writer.WriteField("pinataOptions", string(options)); err != nil {
		return "", fmt.Errorf("failed to write upload options: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finish upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pinning/pinFileToIPFS", &body)
	if err != nil {
		return "", fmt.Errorf("failed to build pin request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.jwt)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to pin content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		if len(bodyBytes) > 0 {
			return "", fmt.Errorf("pinning API error (status %d): %s", resp.StatusCode, string(bodyBytes))
		}
		return "", fmt.Errorf("pinning API returned status code %d", resp.StatusCode)
	}

	var pinned pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&pinned); err != nil {
		return "", fmt.Errorf("failed to decode pin response: %w", err)
	}
	if pinned.IpfsHash == "" {
		return "", fmt.Errorf("pinning API returned empty content id")
	}
	return pinned.IpfsHash, nil
}
