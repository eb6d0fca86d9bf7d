// Package gemini provides a backend.Client implementation over the Google
// Gemini API via the google.golang.org/genai SDK.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/hupe1980/opscouncil/backend"
)

// Options configures the Gemini backend adapter.
type Options struct {
	Model             string
	SystemInstruction string
	Temperature       float32
}

// Client wraps the Gemini generate-content API behind backend.Client.
type Client struct {
	client *genai.Client
	opts   Options
}

// New creates a new Gemini backend.
func New(ctx context.Context, apiKey string, optFns ...func(o *Options)) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	opts := Options{
		Model:       "gemini-2.5-flash",
		Temperature: 0.7,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, opts: opts}, nil
}

// Complete implements backend.Client.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.opts.Temperature),
	}
	if c.opts.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(c.opts.SystemInstruction, genai.RoleUser)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.opts.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini api error: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return text, nil
}

// Info implements backend.Client.
func (c *Client) Info() backend.Info {
	return backend.Info{Name: c.opts.Model, Provider: "gemini"}
}
