// Package client calls the sanitize service.
//
// Each procedure has one blocking method. Callers that want to overlap calls wrap a
// method with Async rather than using a second code path.
package client

import (
	"context"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/MatrixManAtYrService/rhizome-sub001/internal/schema"
	"github.com/MatrixManAtYrService/rhizome-sub001/internal/service"
)

// Client is a sanitize service client.
type Client struct {
	identifier *connect.Client[structpb.Struct, structpb.Struct]
	record     *connect.Client[structpb.Struct, structpb.Struct]
}

// New creates a client for the service at baseURL (e.g. "http://localhost:8080").
func New(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		identifier: connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+service.SanitizeIdentifierProcedure, opts...),
		record:     connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+service.SanitizeRecordProcedure, opts...),
	}
}

// WithBearerToken attaches token to every request.
func WithBearerToken(token string) connect.ClientOption {
	return connect.WithInterceptors(connect.UnaryInterceptorFunc(func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", "Bearer "+token)
			return next(ctx, req)
		}
	}))
}

// SanitizeIdentifier returns the surrogate of value, or nil when value is nil.
func (c *Client) SanitizeIdentifier(ctx context.Context, value *string, length int) (*string, error) {
	v := structpb.NewNullValue()
	if value != nil {
		v = structpb.NewStringValue(*value)
	}
	req := connect.NewRequest(&structpb.Struct{Fields: map[string]*structpb.Value{
		"value":  v,
		"length": structpb.NewNumberValue(float64(length)),
	}})

	resp, err := c.identifier.CallUnary(ctx, req)
	if err != nil {
		return nil, err
	}

	switch kind := resp.Msg.GetFields()["value"].GetKind().(type) {
	case *structpb.Value_StringValue:
		return &kind.StringValue, nil
	case nil, *structpb.Value_NullValue:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected value type %T in response", kind)
	}
}

// SanitizeRecord returns row sanitized against table in version. Numbers come back
// as float64, as with any JSON document.
func (c *Client) SanitizeRecord(ctx context.Context, table string, version schema.Version, row schema.Row) (schema.Row, error) {
	rowValue, err := structpb.NewStruct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to encode row: %w", err)
	}
	req := connect.NewRequest(&structpb.Struct{Fields: map[string]*structpb.Value{
		"table":   structpb.NewStringValue(table),
		"version": structpb.NewNumberValue(float64(version)),
		"row":     structpb.NewStructValue(rowValue),
	}})

	resp, err := c.record.CallUnary(ctx, req)
	if err != nil {
		return nil, err
	}

	result := resp.Msg.GetFields()["row"].GetStructValue()
	if result == nil {
		return nil, fmt.Errorf("response has no row")
	}
	return result.AsMap(), nil
}

// Result is the outcome of an asynchronous call.
type Result[T any] struct {
	Value T
	Err   error
}

// Async runs call in a new goroutine. The returned channel yields exactly one
// Result and is then closed.
func Async[T any](ctx context.Context, call func(context.Context) (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)
		value, err := call(ctx)
		ch <- Result[T]{Value: value, Err: err}
	}()
	return ch
}
