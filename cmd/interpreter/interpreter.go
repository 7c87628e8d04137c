package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/HatiCode/fdynamics/cmd/interpreter/metrics"
	pb "github.com/HatiCode/fdynamics/pkg/api/interpretv1"
	"github.com/HatiCode/fdynamics/pkg/calculators"
	"github.com/HatiCode/fdynamics/pkg/client"
	"github.com/HatiCode/fdynamics/pkg/names"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type resultFetcher interface {
	GetLatest(ctx context.Context, source string) (*client.LatestResult, error)
}

// Interpreter implements the Interpreter gRPC service on top of the name
// codec and the extractor's result API.
type Interpreter struct {
	pb.UnimplementedInterpreterServer

	results  resultFetcher
	registry *calculators.Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func New(results resultFetcher, registry *calculators.Registry, logger *slog.Logger, m *metrics.Metrics) *Interpreter {
	if registry == nil {
		registry = calculators.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Interpreter{
		results:  results,
		registry: registry,
		logger:   logger.With("component", "interpreter"),
		metrics:  m,
	}
}

func (s *Interpreter) Interpret(ctx context.Context, req *structpb.ListValue) (*structpb.Struct, error) {
	start := time.Now()
	resp, err := s.interpretList(req)
	s.record("Interpret", start, err)
	return resp, err
}

func (s *Interpreter) InterpretSource(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	start := time.Now()
	resp, err := s.interpretSource(ctx, req.GetValue())
	s.record("InterpretSource", start, err)
	return resp, err
}

func (s *Interpreter) interpretList(req *structpb.ListValue) (*structpb.Struct, error) {
	featureNames, err := pb.NamesFromList(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return s.interpret(featureNames)
}

func (s *Interpreter) interpretSource(ctx context.Context, source string) (*structpb.Struct, error) {
	if source == "" {
		return nil, status.Error(codes.InvalidArgument, "source cannot be empty")
	}

	fetchStart := time.Now()
	latest, err := s.results.GetLatest(ctx, source)
	s.metrics.ObserveResultFetch(time.Since(fetchStart).Seconds())
	if err != nil {
		s.metrics.RecordResultFetchError()
		s.logger.Error("failed to fetch result", "source", source, "error", err)
		if errors.Is(err, client.ErrNotFound) {
			return nil, status.Error(codes.NotFound, err.Error())
		}
		return nil, status.Error(codes.Unavailable, err.Error())
	}

	age := time.Since(latest.Result.GeneratedAt)
	s.metrics.SetResultAge(age.Seconds())
	if latest.Stale {
		s.logger.Warn("result is stale", "source", source, "age", age)
	}

	var columns []string
	if latest.Result.Features != nil {
		columns = latest.Result.Features.Columns
	}
	resp, err := s.interpret(columns)
	if err != nil {
		return nil, err
	}
	resp.Fields[pb.FieldSource] = structpb.NewStringValue(source)
	resp.Fields["stale"] = structpb.NewBoolValue(latest.Stale)
	resp.Fields["generated_at"] = structpb.NewStringValue(latest.Result.GeneratedAt.UTC().Format(time.RFC3339))
	return resp, nil
}

func (s *Interpreter) interpret(featureNames []string) (*structpb.Struct, error) {
	interps := make([]names.Interpretation, 0, len(featureNames))
	for _, n := range featureNames {
		in, err := names.Interpret(n, s.registry)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		interps = append(interps, in)
	}

	fts, fd, err := names.BuildDictionaries(featureNames, s.registry)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	resp, err := pb.EncodeResponse(interps, fts, fd)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	s.metrics.AddNamesInterpreted(len(featureNames))
	s.logger.Debug("interpreted feature names", "count", len(featureNames), "windows", fts.Windows())
	return resp, nil
}

func (s *Interpreter) record(method string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	s.metrics.RecordGRPCRequest(method, result)
	s.metrics.ObserveGRPCDuration(method, time.Since(start).Seconds())
}
