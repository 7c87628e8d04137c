package interpretv1

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/HatiCode/fdynamics/pkg/calculators"
	"github.com/HatiCode/fdynamics/pkg/names"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type stubServer struct {
	UnimplementedInterpreterServer
	got []string
}

func (s *stubServer) Interpret(ctx context.Context, in *structpb.ListValue) (*structpb.Struct, error) {
	featureNames, err := NamesFromList(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	s.got = featureNames
	return structpb.NewStruct(map[string]any{"count": len(featureNames)})
}

func dial(t *testing.T, srv InterpreterServer, opts ...grpc.ServerOption) InterpreterClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(opts...)
	RegisterInterpreterServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewInterpreterClient(conn)
}

func TestInterpreter_RoundTrip(t *testing.T) {
	srv := &stubServer{}
	c := dial(t, srv)

	req, err := NewNameList([]string{"a", "b"})
	if err != nil {
		t.Fatalf("NewNameList() error = %v", err)
	}
	resp, err := c.Interpret(context.Background(), req)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if got := resp.Fields["count"].GetNumberValue(); got != 2 {
		t.Errorf("count = %v, want 2", got)
	}
	if len(srv.got) != 2 || srv.got[0] != "a" || srv.got[1] != "b" {
		t.Errorf("server received %v, want [a b]", srv.got)
	}
}

func TestInterpreter_NonStringName(t *testing.T) {
	c := dial(t, &stubServer{})

	req, _ := structpb.NewList([]any{"a", 3.0})
	_, err := c.Interpret(context.Background(), req)
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("code = %v, want InvalidArgument", status.Code(err))
	}
}

func TestInterpreter_Unimplemented(t *testing.T) {
	c := dial(t, &stubServer{})

	_, err := c.InterpretSource(context.Background(), wrapperspb.String("cpu"))
	if status.Code(err) != codes.Unimplemented {
		t.Errorf("code = %v, want Unimplemented", status.Code(err))
	}
}

func TestInterpreter_Interceptor(t *testing.T) {
	var methods []string
	interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		methods = append(methods, info.FullMethod)
		return handler(ctx, req)
	}
	c := dial(t, &stubServer{}, grpc.UnaryInterceptor(interceptor))

	req, _ := NewNameList(nil)
	if _, err := c.Interpret(context.Background(), req); err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	_, _ = c.InterpretSource(context.Background(), wrapperspb.String("cpu"))

	if len(methods) != 2 || methods[0] != InterpretMethod || methods[1] != InterpretSourceMethod {
		t.Errorf("intercepted %v", methods)
	}
}

func TestNamesFromList(t *testing.T) {
	if got, err := NamesFromList(nil); err != nil || got != nil {
		t.Errorf("NamesFromList(nil) = %v, %v", got, err)
	}

	list, _ := structpb.NewList([]any{"x", true})
	_, err := NamesFromList(list)
	var te *names.TypeError
	if !errors.As(err, &te) {
		t.Fatalf("error = %v, want *names.TypeError", err)
	}
}

func TestEncodeResponse(t *testing.T) {
	reg := calculators.Default()
	featureNames := []string{
		"cpu||mean@window_5__autocorrelation__lag_1",
		"cpu||quantile|q_0.5@window_5__maximum",
	}
	var interps []names.Interpretation
	for _, n := range featureNames {
		in, err := names.Interpret(n, reg)
		if err != nil {
			t.Fatalf("Interpret(%q) error = %v", n, err)
		}
		interps = append(interps, in)
	}
	fts, fd, err := names.BuildDictionaries(featureNames, reg)
	if err != nil {
		t.Fatalf("BuildDictionaries() error = %v", err)
	}

	s, err := EncodeResponse(interps, fts, fd)
	if err != nil {
		t.Fatalf("EncodeResponse() error = %v", err)
	}

	items := s.Fields[FieldInterpretations].GetListValue().GetValues()
	if len(items) != 2 {
		t.Fatalf("len(interpretations) = %d, want 2", len(items))
	}
	first := items[0].GetStructValue().Fields
	if got := first["fd_calculator"].GetStringValue(); got != "autocorrelation" {
		t.Errorf("fd_calculator = %q, want autocorrelation", got)
	}
	if got := first["window_length"].GetNumberValue(); got != 5 {
		t.Errorf("window_length = %v, want 5", got)
	}
	if got := first["fd_params"].GetStructValue().Fields["lag"].GetNumberValue(); got != 1 {
		t.Errorf("fd_params.lag = %v, want 1", got)
	}
	if _, ok := first["fts_params"].GetKind().(*structpb.Value_NullValue); !ok {
		t.Errorf("fts_params = %v, want null", first["fts_params"])
	}

	quantile := s.Fields[FieldFTSDictionary].GetStructValue().
		Fields["5"].GetStructValue().
		Fields["cpu"].GetStructValue().
		Fields["quantile"].GetListValue().GetValues()
	if len(quantile) != 1 || quantile[0].GetStructValue().Fields["q"].GetNumberValue() != 0.5 {
		t.Errorf("fts dictionary quantile = %v, want [{q: 0.5}]", quantile)
	}
	if _, ok := s.Fields[FieldFDDictionary].GetStructValue().Fields["5"]; !ok {
		t.Error("fd dictionary missing window 5")
	}
}
