// Package service exposes the sanitizer over Connect.
//
// Messages are google.protobuf.Struct documents, so the procedures can be called
// with the Connect, gRPC or gRPC-Web protocols without generated stubs:
//
//	SanitizeIdentifier  {"value": "01HV...", "length": 26}        -> {"value": "Hash..."}
//	SanitizeRecord      {"table": "invoice", "version": 2, "row": {...}} -> {"row": {...}}
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/MatrixManAtYrService/rhizome-sub001/internal/sanitize"
	"github.com/MatrixManAtYrService/rhizome-sub001/internal/schema"
)

const (
	// SanitizeServiceName is the fully-qualified name of the service.
	SanitizeServiceName = "rhizome.sanitize.v1.SanitizeService"

	// SanitizeIdentifierProcedure sanitizes a single identifier value.
	SanitizeIdentifierProcedure = "/" + SanitizeServiceName + "/SanitizeIdentifier"

	// SanitizeRecordProcedure sanitizes one row of a known table.
	SanitizeRecordProcedure = "/" + SanitizeServiceName + "/SanitizeRecord"
)

// SanitizeService implements the sanitize procedures.
type SanitizeService struct {
	registry *schema.Registry
}

// NewSanitizeService creates a service resolving tables in registry.
// A nil registry means schema.Default().
func NewSanitizeService(registry *schema.Registry) *SanitizeService {
	if registry == nil {
		registry = schema.Default()
	}
	return &SanitizeService{registry: registry}
}

// NewSanitizeServiceHandler builds an HTTP handler for svc and returns the path
// prefix to mount it on.
func NewSanitizeServiceHandler(svc *SanitizeService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(SanitizeIdentifierProcedure, connect.NewUnaryHandler(SanitizeIdentifierProcedure, svc.SanitizeIdentifier, opts...))
	mux.Handle(SanitizeRecordProcedure, connect.NewUnaryHandler(SanitizeRecordProcedure, svc.SanitizeRecord, opts...))
	return "/" + SanitizeServiceName + "/", mux
}

// SanitizeIdentifier replaces "value" with its surrogate of "length" characters.
// A null or absent value is returned as null.
func (s *SanitizeService) SanitizeIdentifier(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	fields := req.Msg.GetFields()

	length, err := nonNegativeInt(fields["length"], "length")
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	result := structpb.NewNullValue()
	switch v := fields["value"].GetKind().(type) {
	case nil, *structpb.Value_NullValue:
	case *structpb.Value_StringValue:
		result = structpb.NewStringValue(sanitize.HashUUIDToBase58(v.StringValue, length))
	case *structpb.Value_NumberValue:
		result = structpb.NewStringValue(sanitize.HashUUIDToBase58(sanitize.Text(v.NumberValue), length))
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("value must be a string, number or null"))
	}

	slog.Debug("Identifier sanitized", "length", length, "null", isNull(result))

	return connect.NewResponse(&structpb.Struct{
		Fields: map[string]*structpb.Value{"value": result},
	}), nil
}

// SanitizeRecord sanitizes "row" against the schema of "table" in "version".
// Version defaults to schema.Latest when absent.
func (s *SanitizeService) SanitizeRecord(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	fields := req.Msg.GetFields()

	tableName := fields["table"].GetStringValue()
	if tableName == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("table is required"))
	}

	version := schema.Latest
	if v, ok := fields["version"]; ok {
		n, err := nonNegativeInt(v, "version")
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		version = schema.Version(n)
	}

	row := fields["row"].GetStructValue()
	if row == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("row must be an object"))
	}

	table, err := s.registry.Lookup(tableName, version)
	if err != nil {
		if errors.Is(err, schema.ErrUnknownTable) {
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	sanitized, err := structpb.NewStruct(table.SanitizeRow(row.AsMap()))
	if err != nil {
		slog.Error("SanitizeRecord failed", "table", tableName, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&structpb.Struct{
		Fields: map[string]*structpb.Value{"row": structpb.NewStructValue(sanitized)},
	}), nil
}

func nonNegativeInt(v *structpb.Value, name string) (int, error) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	f := n.NumberValue
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %v", name, f)
	}
	return int(f), nil
}

func isNull(v *structpb.Value) bool {
	_, ok := v.GetKind().(*structpb.Value_NullValue)
	return ok
}
