package grpc_render

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"net"
	"testing"
	"time"

	"cycle-dashboard/src/data_source/synthetic"
	"cycle-dashboard/src/helpers"
	"cycle-dashboard/src/interfaces"
	"cycle-dashboard/src/logger"
	"cycle-dashboard/src/models"
	"cycle-dashboard/src/pipeline"
	"cycle-dashboard/src/render"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type offlineSource struct{}

func (offlineSource) Name() string { return "offline" }

func (offlineSource) FetchSeries(string, time.Time, time.Time) (models.MTimeSeries, error) {
	return models.MTimeSeries{}, errors.New("feed offline")
}

func startTestServer(t *testing.T) *grpc.ClientConn {
	t.Helper()
	conn, _ := startServerWith(t, nil)
	return conn
}

// startServerWith serves source (the synthetic generator when nil) and
// returns the error handler the service reports to.
func startServerWith(t *testing.T, source interfaces.IDataSource) (*grpc.ClientConn, *helpers.ErrorHandler) {
	t.Helper()

	cfg := models.DefaultMConfig()
	cfg.LogLevel = "ERROR"
	cfg.Generator.Seed = 3
	cfg.Render.Width, cfg.Render.Height = 320, 160

	log := logger.NewLogger(cfg.LogLevel, "test")
	log.SetOutput(io.Discard)

	if source == nil {
		source = synthetic.NewSyntheticSource(&cfg.Generator)
	}
	adapter := render.NewAdapter(render.OptionsFromConfig(cfg.Render), log)
	errs := helpers.NewErrorHandler(log)
	srv := NewServer(&cfg, pipeline.NewPipeline(&cfg, source, adapter, log), errs, log)

	lis := bufconn.Listen(1 << 20)
	go srv.Serve(lis)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		conn.Close()
		srv.Stop()
	})
	return conn, errs
}

func request(t *testing.T, fields map[string]interface{}) *structpb.Struct {
	t.Helper()
	req, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatal(err)
	}
	return req
}

// -----------------------------------------------------------------------------

func TestRenderPNG(t *testing.T) {
	client := NewChartClient(startTestServer(t))

	out, err := client.RenderPNG(context.Background(), request(t, map[string]interface{}{
		"symbol": "nq",
		"start":  "2024-01-01",
		"end":    "2024-01-01",
		"mode":   "risk",
	}))
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(out.GetValue()))
	if err != nil {
		t.Fatalf("reply is not a png: %v", err)
	}
	if img.Bounds().Dx() != 640 || img.Bounds().Dy() != 320 {
		t.Errorf("default raster %v, want 640x320", img.Bounds())
	}
}

func TestRenderPNGCustomSize(t *testing.T) {
	client := NewChartClient(startTestServer(t))

	out, err := client.RenderPNG(context.Background(), request(t, map[string]interface{}{
		"start":  "2024-01-01",
		"end":    "2024-01-02",
		"width":  200,
		"height": 100,
		"scale":  1,
	}))
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(out.GetValue()))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Errorf("raster %v, want 200x100", img.Bounds())
	}
}

func TestRenderPNGInvalidArgument(t *testing.T) {
	client := NewChartClient(startTestServer(t))

	cases := map[string]map[string]interface{}{
		"bogus mode":     {"mode": "bogus"},
		"bad date":       {"start": "someday"},
		"size not a num": {"width": "wide"},
		"size too large": {"width": 100000},
		"size too small": {"scale": 0.001},
	}
	for name, fields := range cases {
		_, err := client.RenderPNG(context.Background(), request(t, fields))
		if status.Code(err) != codes.InvalidArgument {
			t.Errorf("%s: code %v, want InvalidArgument (%v)", name, status.Code(err), err)
		}
	}
}

func TestFailuresReachSharedErrorHandler(t *testing.T) {
	conn, errs := startServerWith(t, offlineSource{})
	client := NewChartClient(conn)

	_, err := client.RenderPNG(context.Background(), request(t, map[string]interface{}{"start": "2024-01-01"}))
	if status.Code(err) != codes.Internal {
		t.Fatalf("code %v, want Internal (%v)", status.Code(err), err)
	}
	_, err = client.RenderFigure(context.Background(), request(t, map[string]interface{}{"start": "2024-01-01"}))
	if status.Code(err) != codes.Internal {
		t.Fatalf("code %v, want Internal (%v)", status.Code(err), err)
	}
	if n := errs.ErrorCount(); n != 2 {
		t.Errorf("error count %d, want 2", n)
	}

	// client errors are rejected, not counted
	_, err = client.RenderPNG(context.Background(), request(t, map[string]interface{}{"mode": "bogus"}))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code %v, want InvalidArgument", status.Code(err))
	}
	if n := errs.ErrorCount(); n != 2 {
		t.Errorf("error count %d after a client error, want 2", n)
	}
}

func TestRenderFigure(t *testing.T) {
	client := NewChartClient(startTestServer(t))

	out, err := client.RenderFigure(context.Background(), request(t, map[string]interface{}{
		"symbol": "es",
		"start":  "2024-01-01",
		"end":    "2024-01-02",
		"mode":   "vol",
	}))
	if err != nil {
		t.Fatal(err)
	}
	fields := out.GetFields()
	if fields["title"].GetStringValue() != "Volatility ES" || fields["mode"].GetStringValue() != "vol" {
		t.Errorf("unexpected figure header %v / %v", fields["title"], fields["mode"])
	}
	if fields["paper_bgcolor"].GetStringValue() != models.TransparentFill {
		t.Errorf("paper background %v", fields["paper_bgcolor"])
	}
	points := fields["points"].GetListValue().GetValues()
	if len(points) != 25 {
		t.Fatalf("got %d points, want 25", len(points))
	}
	if _, isNull := points[0].GetStructValue().GetFields()["y"].GetKind().(*structpb.Value_NullValue); !isNull {
		t.Error("first volatility point should be null")
	}
}

func TestHealthService(t *testing.T) {
	conn := startTestServer(t)
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatal(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("status %v", resp.GetStatus())
	}
}
