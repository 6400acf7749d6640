package client

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/notework/timekeeper/pkg/notion"
	"github.com/notework/timekeeper/pkg/notion/wire"
)

// PageHandle addresses one page. The first retrieval is cached; mutations
// replace the cache with the entry the service echoes back.
type PageHandle struct {
	client *notionClient
	id     string
	cached *notion.Entry
}

func (h *PageHandle) ID() string {
	return h.id
}

// Retrieve returns the page, fetching it on first use. Parameters such as a
// property filter bypass the cache, since they change what the service sends
// back.
func (h *PageHandle) Retrieve(ctx context.Context, parameters ...RequestDecoratorFunc) (*notion.Entry, error) {
	if h.cached != nil && len(parameters) == 0 {
		return h.cached, nil
	}

	return h.Refresh(ctx, parameters...)
}

// Refresh drops the cached entry and fetches the page again. A parameterized
// fetch returns a partial view and leaves the cache alone.
func (h *PageHandle) Refresh(ctx context.Context, parameters ...RequestDecoratorFunc) (*notion.Entry, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-page",
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, h.id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	endpoint := h.client.baseURL + "/pages/" + url.PathEscape(h.id) + encodeParameters(parameters)

	document, err := h.client.callAndValidate(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	entry := notion.NewEntry(document)
	if len(parameters) == 0 {
		h.cached = entry
	}

	return entry, nil
}

// Update patches page level keys and property values. Objects merge the way
// wire.Payload merges them.
func (h *PageHandle) Update(ctx context.Context, objects ...any) (*notion.Entry, error) {
	var err error

	ctx, span := tracer.Start(ctx, "update-page",
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, h.id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	payload, err := wire.Payload(objects...)
	if err != nil {
		return nil, err
	}

	document, err := h.client.callAndValidate(ctx, http.MethodPatch, h.client.baseURL+"/pages/"+url.PathEscape(h.id), bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}

	// the cache is left alone so that reads keep seeing the retrieved
	// state until the caller decides to Refresh
	return notion.NewEntry(document), nil
}

// PropertyItem retrieves a single property value by its property id, which
// is how values too large for the page payload (long text, wide relations)
// are read.
func (h *PageHandle) PropertyItem(ctx context.Context, propertyID string, parameters ...RequestDecoratorFunc) (*notion.PropertyItemResult, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-page-property",
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, h.id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	endpoint := h.client.baseURL + "/pages/" + url.PathEscape(h.id) + "/properties/" + url.PathEscape(propertyID) + encodeParameters(parameters)

	document, err := h.client.callAndValidate(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	return notion.NewPropertyItemResult(document), nil
}

func (h *PageHandle) Archive(ctx context.Context) (*notion.Entry, error) {
	return h.setArchived(ctx, true)
}

func (h *PageHandle) Restore(ctx context.Context) (*notion.Entry, error) {
	return h.setArchived(ctx, false)
}

func (h *PageHandle) setArchived(ctx context.Context, archived bool) (*notion.Entry, error) {
	flag := wire.NewObject()
	flag.Set("archived", archived)
	return h.Update(ctx, flag)
}
