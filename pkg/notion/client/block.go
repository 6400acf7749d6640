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
	"github.com/notework/timekeeper/pkg/notion/properties"
	"github.com/notework/timekeeper/pkg/notion/wire"
)

// BlockHandle addresses one content block. Pages are blocks too, so a page id
// is a valid target for Children and AppendChildren.
type BlockHandle struct {
	client *notionClient
	id     string
	cached *notion.Entry
}

func (h *BlockHandle) ID() string {
	return h.id
}

func (h *BlockHandle) Retrieve(ctx context.Context) (*notion.Entry, error) {
	if h.cached != nil {
		return h.cached, nil
	}

	return h.Refresh(ctx)
}

func (h *BlockHandle) Refresh(ctx context.Context) (*notion.Entry, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-block",
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, h.id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	document, err := h.client.callAndValidate(ctx, http.MethodGet, h.client.baseURL+"/blocks/"+url.PathEscape(h.id), nil)
	if err != nil {
		return nil, err
	}

	h.cached = notion.NewEntry(document)
	return h.cached, nil
}

// Children lists the block's direct children one page at a time.
func (h *BlockHandle) Children(ctx context.Context, parameters ...RequestDecoratorFunc) (*notion.QueryPage, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-block-children",
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, h.id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	endpoint := h.client.baseURL + "/blocks/" + url.PathEscape(h.id) + "/children" + encodeParameters(parameters)

	document, err := h.client.callAndValidate(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	return notion.NewQueryPage(document)
}

func (h *BlockHandle) AppendChildren(ctx context.Context, children *properties.Children) (*notion.AppendChildrenResult, error) {
	var err error

	ctx, span := tracer.Start(ctx, "append-block-children",
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, h.id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	payload, err := wire.Payload(children)
	if err != nil {
		return nil, err
	}

	document, err := h.client.callAndValidate(ctx, http.MethodPatch, h.client.baseURL+"/blocks/"+url.PathEscape(h.id)+"/children", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}

	return notion.NewAppendChildrenResult(notion.NewEntry(document)), nil
}

func (h *BlockHandle) Update(ctx context.Context, objects ...any) (*notion.Entry, error) {
	var err error

	ctx, span := tracer.Start(ctx, "update-block",
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, h.id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	payload, err := wire.Payload(objects...)
	if err != nil {
		return nil, err
	}

	document, err := h.client.callAndValidate(ctx, http.MethodPatch, h.client.baseURL+"/blocks/"+url.PathEscape(h.id), bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}

	return notion.NewEntry(document), nil
}

// Delete moves the block to the trash. Deleted blocks can be brought back
// with Restore until the trash is emptied.
func (h *BlockHandle) Delete(ctx context.Context) error {
	var err error

	ctx, span := tracer.Start(ctx, "delete-block",
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, h.id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	_, err = h.client.callAndValidate(ctx, http.MethodDelete, h.client.baseURL+"/blocks/"+url.PathEscape(h.id), nil)
	return err
}

func (h *BlockHandle) Restore(ctx context.Context) (*notion.Entry, error) {
	flag := wire.NewObject()
	flag.Set("archived", false)
	return h.Update(ctx, flag)
}
