package grpc_render

import (
	"context"
	"encoding/json"
	"fmt"

	"cycle-dashboard/src/helpers"
	"cycle-dashboard/src/logger"
	"cycle-dashboard/src/models"
	"cycle-dashboard/src/pipeline"
	"cycle-dashboard/src/render"

	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ChartService implements ChartServer on top of the shared pipeline.
type ChartService struct {
	UnimplementedChartServer
	Pipeline     *pipeline.Pipeline
	Logger       *logger.Logger
	ErrorHandler *helpers.ErrorHandler
}

func NewChartService(p *pipeline.Pipeline, errs *helpers.ErrorHandler, log *logger.Logger) *ChartService {
	return &ChartService{
		Pipeline:     p,
		Logger:       log,
		ErrorHandler: errs,
	}
}

// -----------------------------------------------------------------------------

// RenderPNG expects {symbol, start, end, mode} strings and optional numeric
// {width, height, scale}; missing fields take the HTTP endpoint defaults.
func (s *ChartService) RenderPNG(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error) {
	q, err := s.Pipeline.Parse(rawQuery(req))
	if err != nil {
		return nil, s.fail(err, "RenderPNG")
	}

	size, err := imageSize(req, s.Pipeline.ImageSize)
	if err != nil {
		return nil, s.fail(err, "RenderPNG")
	}

	img, err := s.Pipeline.Image(ctx, q, size)
	if err != nil {
		return nil, s.fail(err, "RenderPNG")
	}

	s.Logger.Debug("gRPC: RenderPNG %s %s, %d bytes", q.Symbol, q.Mode, len(img.Bytes))
	return wrapperspb.Bytes(img.Bytes), nil
}

// -----------------------------------------------------------------------------

// RenderFigure returns the chart description as a Struct mirroring its JSON form.
func (s *ChartService) RenderFigure(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	q, err := s.Pipeline.Parse(rawQuery(req))
	if err != nil {
		return nil, s.fail(err, "RenderFigure")
	}

	fig, err := s.Pipeline.Figure(ctx, q)
	if err != nil {
		return nil, s.fail(err, "RenderFigure")
	}

	out, err := figureStruct(fig)
	if err != nil {
		return nil, s.fail(err, "RenderFigure")
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (s *ChartService) fail(err error, method string) error {
	s.ErrorHandler.Handle(err, "gRPC "+method)
	return status.Error(helpers.GRPCCode(err), err.Error())
}

// -----------------------------------------------------------------------------
// Struct conversion
// -----------------------------------------------------------------------------

func rawQuery(req *structpb.Struct) pipeline.RawQuery {
	fields := req.GetFields()
	return pipeline.RawQuery{
		Symbol: fields["symbol"].GetStringValue(),
		Start:  fields["start"].GetStringValue(),
		End:    fields["end"].GetStringValue(),
		Mode:   fields["mode"].GetStringValue(),
	}
}

// -----------------------------------------------------------------------------

func imageSize(req *structpb.Struct, defaults render.ImageSize) (render.ImageSize, error) {
	size := defaults
	fields := req.GetFields()

	number := func(name string) (float64, bool, error) {
		v, ok := fields[name]
		if !ok {
			return 0, false, nil
		}
		if _, isNumber := v.GetKind().(*structpb.Value_NumberValue); !isNumber {
			return 0, false, helpers.NewInvalidRequestError("%s must be a number", name)
		}
		return v.GetNumberValue(), true, nil
	}

	if w, ok, err := number("width"); err != nil {
		return size, err
	} else if ok {
		size.Width = int(w)
	}
	if h, ok, err := number("height"); err != nil {
		return size, err
	} else if ok {
		size.Height = int(h)
	}
	if sc, ok, err := number("scale"); err != nil {
		return size, err
	} else if ok {
		size.Scale = sc
	}
	return size, size.Validate()
}

// -----------------------------------------------------------------------------

func figureStruct(fig models.MFigure) (*structpb.Struct, error) {
	raw, err := json.Marshal(fig)
	if err != nil {
		return nil, fmt.Errorf("encode figure: %w", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode figure: %w", err)
	}
	return structpb.NewStruct(fields)
}
