package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	"github.com/notework/timekeeper/pkg/notion"
	"github.com/notework/timekeeper/pkg/notion/errors"
	"github.com/notework/timekeeper/pkg/notion/properties"
	"github.com/notework/timekeeper/pkg/notion/wire"
)

const (
	DefaultBaseURL    = "https://api.notion.com/v1"
	DefaultAPIVersion = "2022-06-28"
)

//go:generate moq -rm -out ../test/notionclient_mock.go . NotionClient

type NotionClient interface {
	Block(blockID string) (*BlockHandle, error)
	Page(pageID string) (*PageHandle, error)
	Database(databaseID string) (*DatabaseHandle, error)

	CreatePage(ctx context.Context, parent properties.Parent, objects ...any) (*notion.CreatePageResult, error)
	CreatePageWithTitle(ctx context.Context, parent properties.Parent, title string) (*notion.CreatePageResult, error)
	CreateDatabase(ctx context.Context, parent properties.Parent, title string, schema *properties.SchemaProperties) (*notion.Entry, error)
}

// RequestDecoratorFunc appends query parameters to a request.
type RequestDecoratorFunc func([]string) []string

func Debug(enabled string) func(*notionClient) {
	return func(c *notionClient) {
		c.debug = (enabled == "true")
	}
}

func BaseURL(baseURL string) func(*notionClient) {
	return func(c *notionClient) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func APIVersion(version string) func(*notionClient) {
	return func(c *notionClient) {
		c.version = version
	}
}

func New(token string, options ...func(*notionClient)) NotionClient {
	c := &notionClient{
		baseURL: DefaultBaseURL,
		token:   token,
		version: DefaultAPIVersion,
		debug:   false,
	}

	for _, option := range options {
		option(c)
	}

	return c
}

const TraceAttributeObjectID string = "object-id"

var tracer = otel.Tracer("timekeeper/notion-client")

type notionClient struct {
	baseURL string
	token   string
	version string
	debug   bool
}

func (c *notionClient) Block(blockID string) (*BlockHandle, error) {
	id, err := canonicalID(blockID)
	if err != nil {
		return nil, err
	}

	return &BlockHandle{client: c, id: id}, nil
}

func (c *notionClient) Page(pageID string) (*PageHandle, error) {
	id, err := canonicalID(pageID)
	if err != nil {
		return nil, err
	}

	return &PageHandle{client: c, id: id}, nil
}

func (c *notionClient) Database(databaseID string) (*DatabaseHandle, error) {
	id, err := canonicalID(databaseID)
	if err != nil {
		return nil, err
	}

	return &DatabaseHandle{client: c, id: id}, nil
}

func (c *notionClient) CreatePage(ctx context.Context, parent properties.Parent, objects ...any) (*notion.CreatePageResult, error) {
	var err error

	ctx, span := tracer.Start(ctx, "create-page")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if len(objects) == 0 {
		err = fmt.Errorf("a new page requires at least a properties object (%w)", errors.ErrValidation)
		return nil, err
	}

	payload, err := wire.Payload(append([]any{parent}, objects...)...)
	if err != nil {
		return nil, err
	}

	document, err := c.callAndValidate(ctx, http.MethodPost, c.baseURL+"/pages", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}

	return notion.NewCreatePageResult(notion.NewEntry(document)), nil
}

// CreatePageWithTitle creates a page carrying nothing but a title. The title
// property is addressed by its fixed id, so the parent database's title
// column name does not matter.
func (c *notionClient) CreatePageWithTitle(ctx context.Context, parent properties.Parent, title string) (*notion.CreatePageResult, error) {
	props, err := properties.NewProperties(
		properties.NewTitleValue(properties.Text(title), properties.Named("title")),
	)
	if err != nil {
		return nil, err
	}

	return c.CreatePage(ctx, parent, props)
}

func (c *notionClient) CreateDatabase(ctx context.Context, parent properties.Parent, title string, schema *properties.SchemaProperties) (*notion.Entry, error) {
	var err error

	ctx, span := tracer.Start(ctx, "create-database")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	titleObject := wire.NewObject()
	titleObject.Set("title", properties.Text(title))

	payload, err := wire.Payload(parent, titleObject, schema)
	if err != nil {
		return nil, err
	}

	document, err := c.callAndValidate(ctx, http.MethodPost, c.baseURL+"/databases", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}

	return notion.NewEntry(document), nil
}

// canonicalID validates an object id and normalizes it to the hyphen
// stripped form, which is the one used everywhere after construction. Ids
// are accepted with or without hyphens, since page URLs carry them without.
func canonicalID(id string) (string, error) {
	stripped := strings.ReplaceAll(id, "-", "")
	if _, err := uuid.Parse(stripped); err != nil {
		return "", errors.NewValidationError(fmt.Sprintf("%q is not a valid object id: %s", id, err.Error()))
	}

	return stripped, nil
}

func encodeParameters(parameters []RequestDecoratorFunc) string {
	params := make([]string, 0, len(parameters))
	for _, rdf := range parameters {
		params = rdf(params)
	}

	if len(params) == 0 {
		return ""
	}

	return "?" + strings.Join(params, "&")
}

// callAndValidate issues a request and decodes the response body, mapping
// error responses to their typed errors.
func (c *notionClient) callAndValidate(ctx context.Context, method, endpoint string, body io.Reader) (map[string]any, error) {
	response, responseBody, err := c.callNotion(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}

	document, err := errors.ValidateResponseBody(responseBody)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response code %d (%w)", response.StatusCode, errors.ErrInternal)
	}

	return document, nil
}

func (c *notionClient) callNotion(ctx context.Context, method, endpoint string, body io.Reader) (*http.Response, []byte, error) {
	httpClient := http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %s (%w)", err.Error(), errors.ErrInternal)
	}

	req.Header.Add("Authorization", "Bearer "+c.token)
	req.Header.Add("Notion-Version", c.version)
	if body != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send request: %s (%w)", err.Error(), errors.ErrServiceUnavailable)
	}

	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %s (%w)", err.Error(), errors.ErrBadResponse)
	}

	if c.debug && resp.StatusCode >= http.StatusBadRequest {
		if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusNotFound {
			reqbytes, _ := httputil.DumpRequest(req, false)
			respbytes, _ := httputil.DumpResponse(resp, false)

			log := logging.GetFromContext(ctx)
			log.Error("request failed",
				slog.String("request", string(reqbytes)),
				slog.String("response", string(respbytes)),
			)
		}
	}

	return resp, respBody, nil
}
