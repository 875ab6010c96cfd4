package rpc

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/Kevdacosta07/CarbWeb/internal/analyzer"
	"github.com/Kevdacosta07/CarbWeb/internal/carbon"
	"github.com/Kevdacosta07/CarbWeb/internal/logging"
)

// Analyzer runs one page analysis.
type Analyzer interface {
	Analyze(ctx context.Context, req analyzer.Request) (*analyzer.Result, error)
}

// Service implements AnalyzerServer on top of an Analyzer.
type Service struct {
	analyzer Analyzer
	logger   zerolog.Logger
}

// NewService creates a Service.
func NewService(a Analyzer, logger zerolog.Logger) *Service {
	return &Service{
		analyzer: a,
		logger:   logger.With().Str(logging.FieldComponent, "grpc").Logger(),
	}
}

// NewServer returns a grpc.Server with the Analyzer and health services
// registered.
func NewServer(svc *Service, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(svc.logInterceptor))
	s := grpc.NewServer(opts...)
	s.RegisterService(&ServiceDesc, svc)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return s
}

// Analyze reads url, strategy and monthly_visitors from the request struct.
func (s *Service) Analyze(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	traceID := logging.TraceID(ctx)
	_ = grpc.SetHeader(ctx, metadata.Pairs(TraceIDMetadataKey, traceID))

	url, _ := getStringAttr(req, "url")
	strategy, _ := getStringAttr(req, "strategy")
	visitors, err := visitorsAttr(req, "monthly_visitors")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	res, err := s.analyzer.Analyze(ctx, analyzer.Request{
		URL:             url,
		Strategy:        strategy,
		MonthlyVisitors: visitors,
	})
	if err != nil {
		kind := analyzer.KindOf(err)
		msg := err.Error()
		if kind == analyzer.KindInternal {
			msg = "internal error"
		}
		return nil, status.Error(kind.GRPCCode(), msg)
	}

	out, err := resultToStruct(res)
	if err != nil {
		s.logger.Error().Str(logging.FieldTraceID, traceID).Err(err).Msg("failed to encode result")
		return nil, status.Error(codes.Internal, "failed to encode result")
	}
	return out, nil
}

// logInterceptor resolves the trace ID from metadata and logs each call.
func (s *Service) logInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	traceID := traceIDFromMetadata(ctx)
	ctx = logging.WithTraceID(ctx, traceID)

	resp, err := handler(ctx, req)

	evt := s.logger.Info()
	if err != nil {
		evt = s.logger.Warn().Err(err).Str("grpc_code", status.Code(err).String())
	}
	evt.Str(logging.FieldTraceID, traceID).
		Str(logging.FieldOperation, info.FullMethod).
		Int64(logging.FieldDuration, time.Since(start).Milliseconds()).
		Msg("rpc completed")
	return resp, err
}

func traceIDFromMetadata(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(TraceIDMetadataKey); len(values) > 0 && values[0] != "" {
			return values[0]
		}
	}
	return logging.NewTraceID()
}

// resultToStruct converts the result through its JSON form and adds
// analyzed_at in the canonical Timestamp encoding.
func resultToStruct(res *analyzer.Result) (*structpb.Struct, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	ts, err := protojson.Marshal(timestamppb.New(res.AnalyzedAt))
	if err != nil {
		return nil, err
	}
	analyzedAt, err := strconv.Unquote(string(ts))
	if err != nil {
		return nil, fmt.Errorf("unexpected timestamp encoding %s: %w", ts, err)
	}
	m["analyzed_at"] = analyzedAt

	return structpb.NewStruct(m)
}

// getStringAttr extracts a string attribute from a protobuf Struct.
func getStringAttr(attrs *structpb.Struct, key string) (string, bool) {
	if attrs == nil || attrs.Fields == nil {
		return "", false
	}
	if val, ok := attrs.Fields[key]; ok {
		if strVal := val.GetStringValue(); strVal != "" {
			return strVal, true
		}
	}
	return "", false
}

// visitorsAttr reads a visitor count, clamped to [0, MaxProjectionVisitors].
// A missing field is zero. NaN and infinities are rejected.
func visitorsAttr(attrs *structpb.Struct, key string) (int, error) {
	v, ok := getNumberAttr(attrs, key)
	if !ok {
		return 0, nil
	}
	n, ok := carbon.VisitorCount(v)
	if !ok {
		return 0, fmt.Errorf("%s must be a finite number", key)
	}
	return n, nil
}

// getNumberAttr accepts NumberValue and numeric StringValue fields.
func getNumberAttr(attrs *structpb.Struct, key string) (float64, bool) {
	if attrs == nil || attrs.Fields == nil {
		return 0, false
	}
	if val, ok := attrs.Fields[key]; ok {
		switch v := val.GetKind().(type) {
		case *structpb.Value_NumberValue:
			return v.NumberValue, true
		case *structpb.Value_StringValue:
			if num, err := strconv.ParseFloat(v.StringValue, 64); err == nil {
				return num, true
			}
		}
	}
	return 0, false
}
