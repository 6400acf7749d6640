package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/notework/timekeeper/pkg/notion"
	"github.com/notework/timekeeper/pkg/notion/errors"
	"github.com/notework/timekeeper/pkg/notion/properties"
	"github.com/notework/timekeeper/pkg/notion/query"
	"github.com/notework/timekeeper/pkg/notion/wire"
)

// DatabaseHandle addresses one database. Like PageHandle it caches the first
// retrieval, which matters here because schema lookups (property name to id
// resolution) would otherwise refetch the database per column.
type DatabaseHandle struct {
	client *notionClient
	id     string
	cached *notion.Entry
}

func (h *DatabaseHandle) ID() string {
	return h.id
}

func (h *DatabaseHandle) Retrieve(ctx context.Context) (*notion.Entry, error) {
	if h.cached != nil {
		return h.cached, nil
	}

	return h.Refresh(ctx)
}

func (h *DatabaseHandle) Refresh(ctx context.Context) (*notion.Entry, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-database",
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, h.id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	document, err := h.client.callAndValidate(ctx, http.MethodGet, h.client.baseURL+"/databases/"+url.PathEscape(h.id), nil)
	if err != nil {
		return nil, err
	}

	h.cached = notion.NewEntry(document)
	return h.cached, nil
}

func (h *DatabaseHandle) Update(ctx context.Context, objects ...any) (*notion.Entry, error) {
	var err error

	ctx, span := tracer.Start(ctx, "update-database",
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, h.id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	payload, err := wire.Payload(objects...)
	if err != nil {
		return nil, err
	}

	document, err := h.client.callAndValidate(ctx, http.MethodPatch, h.client.baseURL+"/databases/"+url.PathEscape(h.id), bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}

	// schema lookups read the cache, so mutations leave it untouched and
	// migration code refreshes explicitly when it needs the new columns
	return notion.NewEntry(document), nil
}

// PropertyID resolves a column name to its stable property id via the cached
// schema.
func (h *DatabaseHandle) PropertyID(ctx context.Context, propertyName string) (string, error) {
	entry, err := h.Retrieve(ctx)
	if err != nil {
		return "", err
	}

	id, ok := entry.PropertyString(propertyName, "id")
	if !ok {
		return "", errors.NewNotFoundError(fmt.Sprintf("database has no property named %q", propertyName))
	}

	return id, nil
}

// HasProperty reports whether the cached schema carries a column with the
// given name.
func (h *DatabaseHandle) HasProperty(ctx context.Context, propertyName string) (bool, error) {
	entry, err := h.Retrieve(ctx)
	if err != nil {
		return false, err
	}

	_, ok := entry.Property(propertyName)
	return ok, nil
}

// Query streams all entries the filter matches, following result cursors
// until the service reports no more pages. The stream terminates with a nil
// entry, after which the result's Err field tells a completed stream from a
// truncated one.
func (h *DatabaseHandle) Query(ctx context.Context, filter *query.CompoundFilter, sorts *query.SortFilter, parameters ...RequestDecoratorFunc) (*notion.QueryResult, error) {
	if filter != nil {
		if err := filter.Validate(); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}

	first, err := h.QueryPage(ctx, "", filter, sorts, parameters...)
	if err != nil {
		return nil, err
	}

	result := notion.NewQueryResult()

	go func() {
		page := first
		for {
			for _, entry := range page.Entries {
				result.Found <- entry
			}

			if !page.HasMore {
				break
			}

			next, pageErr := h.QueryPage(ctx, page.NextCursor, filter, sorts, parameters...)
			if pageErr != nil {
				result.Err = pageErr
				break
			}
			page = next
		}
		result.Found <- nil
	}()

	return result, nil
}

// QueryPage fetches a single result page, for callers that thread cursors
// themselves.
func (h *DatabaseHandle) QueryPage(ctx context.Context, startCursor string, filter *query.CompoundFilter, sorts *query.SortFilter, parameters ...RequestDecoratorFunc) (*notion.QueryPage, error) {
	var err error

	ctx, span := tracer.Start(ctx, "query-database",
		trace.WithAttributes(attribute.String(TraceAttributeObjectID, h.id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	objects := make([]any, 0, 3)
	if filter != nil {
		objects = append(objects, filter)
	}
	if sorts != nil {
		objects = append(objects, sorts)
	}
	if startCursor != "" {
		cursor := wire.NewObject()
		cursor.Set("start_cursor", startCursor)
		objects = append(objects, cursor)
	}

	payload, err := wire.Payload(objects...)
	if err != nil {
		return nil, err
	}

	endpoint := h.client.baseURL + "/databases/" + url.PathEscape(h.id) + "/query" + encodeParameters(parameters)

	document, err := h.client.callAndValidate(ctx, http.MethodPost, endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}

	return notion.NewQueryPage(document)
}

// FilterProperties limits the properties included in query results to the
// given property ids. Use PropertyID to resolve column names first.
func FilterProperties(propertyIDs ...string) RequestDecoratorFunc {
	return func(params []string) []string {
		for _, id := range propertyIDs {
			params = append(params, "filter_properties="+url.QueryEscape(id))
		}
		return params
	}
}

// AddColumns extends the schema with new columns. Existing columns with the
// same names are reconfigured rather than duplicated.
func (h *DatabaseHandle) AddColumns(ctx context.Context, schemas ...properties.SchemaObject) (*notion.Entry, error) {
	schema, err := properties.NewSchemaProperties(schemas...)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	return h.Update(ctx, schema)
}

// RemoveColumn deletes a column and the values stored in it.
func (h *DatabaseHandle) RemoveColumn(ctx context.Context, propertyName string) (*notion.Entry, error) {
	// deletion is requested with an explicit null, which must survive pruning
	patch := wire.NewObject()
	patch.Nest("properties", propertyName, json.RawMessage("null"))
	return h.Update(ctx, patch)
}

func (h *DatabaseHandle) RenameColumn(ctx context.Context, propertyName, newName string) (*notion.Entry, error) {
	rename := wire.NewObject()
	rename.Set("name", newName)

	patch := wire.NewObject()
	patch.Nest("properties", propertyName, rename)
	return h.Update(ctx, patch)
}
