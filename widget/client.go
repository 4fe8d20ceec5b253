package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github/itish2003/invoicechat/models"
)

const AskPath = "/ask"

// Client posts questions to a backend's /ask endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a Client for the backend at baseURL. A nil httpClient
// means http.DefaultClient; no timeout is imposed beyond the one it carries.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Ask sends the question and parses the JSON body. The HTTP status is not
// inspected: an error body still parses and simply has no response field.
func (c *Client) Ask(ctx context.Context, question string) (Reply, error) {
	body, err := EncodeQuestion(question)
	if err != nil {
		return Reply{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+AskPath, bytes.NewReader(body))
	if err != nil {
		return Reply{}, fmt.Errorf("failed to create ask request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to call %s: %w", AskPath, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to read ask response: %w", err)
	}
	return ParseReply(raw)
}

// EncodeQuestion renders the request body exactly as {"question":"..."}: no
// HTML escaping and no trailing newline.
func EncodeQuestion(question string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(models.AskRequest{Question: question}); err != nil {
		return nil, fmt.Errorf("failed to marshal question: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
