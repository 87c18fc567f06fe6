package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrAssistantDisabled = errors.New("assistant: not configured")
	ErrAssistantUpstream = errors.New("assistant: upstream error")
)

const tutorPersona = `You are FinTrek Assistant, a friendly financial literacy tutor.
- Explain finance in simple, practical terms.
- Encourage users with positivity and motivation.
- Keep answers short and structured.
- If asked about FinTrek, explain dashboard, points, levels, and learning features.`

// Assistant calls the Gemini generateContent REST endpoint.
type Assistant struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generateRequest struct {
	Contents []geminiContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (a *Assistant) client() *http.Client {
	if a.HTTPClient != nil {
		return a.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// Ask sends the user's message with the tutor persona and returns the reply text.
func (a *Assistant) Ask(ctx context.Context, message string) (string, error) {
	if a == nil || a.APIKey == "" {
		return "", ErrAssistantDisabled
	}
	prompt := fmt.Sprintf("%s\n\nUser: %s", tutorPersona, message)
	body, err := json.Marshal(generateRequest{Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}}})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(a.BaseURL, "/"), url.PathEscape(a.Model), url.QueryEscape(a.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssistantUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrAssistantUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrAssistantUpstream, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrAssistantUpstream, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty candidates", ErrAssistantUpstream)
	}
	var reply strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		reply.WriteString(p.Text)
	}
	return strings.TrimSpace(reply.String()), nil
}
