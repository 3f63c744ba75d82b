package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/ares-whatsapp-router/internal/channels"
	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

const (
	DefaultGraphAPIBase = "https://graph.facebook.com/v17.0"
	defaultHTTPTimeout  = 10 * time.Second

	maxButtons       = 3
	maxButtonTitle   = 20
	maxRowTitle      = 24
	maxRowDesc       = 72
	maxListHeader    = 60
	maxListButtonTxt = 20
)

// Client sends messages through the WhatsApp Cloud API. The sending phone
// number and token come from the channel config passed on each call.
type Client struct {
	graphAPIBase string
	httpClient   *http.Client
	logger       *logging.Logger
}

// NewClient creates a new Graph API client.
func NewClient(graphAPIBase string, logger *logging.Logger) *Client {
	if strings.TrimSpace(graphAPIBase) == "" {
		graphAPIBase = DefaultGraphAPIBase
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		graphAPIBase: strings.TrimRight(graphAPIBase, "/"),
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
		logger:       logger,
	}
}

// WithHTTPClient overrides the HTTP client (useful for testing).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, cfg channels.Config, to, body string) error {
	req := sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             &sendText{Body: body},
	}
	_, err := c.send(ctx, cfg, req)
	return err
}

// SendButtons sends an interactive message with up to three reply buttons.
func (c *Client) SendButtons(ctx context.Context, cfg channels.Config, to, bodyText string, buttons []Button) error {
	if len(buttons) > maxButtons {
		return ErrTooManyButtons
	}
	replies := make([]replyButton, 0, len(buttons))
	for _, b := range buttons {
		replies = append(replies, replyButton{
			Type:  "reply",
			Reply: replyButtonBody{ID: b.ID, Title: truncate(b.Title, maxButtonTitle)},
		})
	}
	req := sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "interactive",
		Interactive: &sendInteractive{
			Type:   "button",
			Body:   textObject{Text: bodyText},
			Action: sendAction{Buttons: replies},
		},
	}
	_, err := c.send(ctx, cfg, req)
	return err
}

// SendList sends an interactive list menu.
func (c *Client) SendList(ctx context.Context, cfg channels.Config, to string, list ListMessage) error {
	sections := make([]ListSection, 0, len(list.Sections))
	for _, s := range list.Sections {
		rows := make([]ListRow, 0, len(s.Rows))
		for _, r := range s.Rows {
			rows = append(rows, ListRow{
				ID:          r.ID,
				Title:       truncate(r.Title, maxRowTitle),
				Description: truncate(r.Description, maxRowDesc),
			})
		}
		sections = append(sections, ListSection{Title: truncate(s.Title, maxRowTitle), Rows: rows})
	}

	interactive := &sendInteractive{
		Type: "list",
		Body: textObject{Text: list.Body},
		Action: sendAction{
			Button:   truncate(list.ButtonLabel, maxListButtonTxt),
			Sections: sections,
		},
	}
	if list.Header != "" {
		interactive.Header = &textHeader{Type: "text", Text: truncate(list.Header, maxListHeader)}
	}
	req := sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "interactive",
		Interactive:      interactive,
	}
	_, err := c.send(ctx, cfg, req)
	return err
}

func (c *Client) send(ctx context.Context, cfg channels.Config, req sendRequest) (*SendResponse, error) {
	if !cfg.Complete() {
		return nil, ErrIncompleteConfig
	}
	if strings.TrimSpace(req.To) == "" {
		return nil, ErrEmptyRecipient
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: marshal send request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.graphAPIBase, cfg.EndpointID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+cfg.Credential)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: send message: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: read response: %w", err)
	}

	var sendResp SendResponse
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &sendResp); err != nil && resp.StatusCode == http.StatusOK {
			return nil, fmt.Errorf("whatsapp: unmarshal response: %w", err)
		}
	}

	if sendResp.Error != nil {
		return &sendResp, fmt.Errorf("whatsapp: %w", sendResp.Error)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &sendResp, fmt.Errorf("whatsapp: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if len(sendResp.Messages) > 0 {
		c.logger.Debug("whatsapp message sent",
			"type", req.Type,
			"to", logging.MaskPhone(req.To),
			"wamid", sendResp.Messages[0].ID,
		)
	}
	return &sendResp, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
