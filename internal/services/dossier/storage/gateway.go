package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/platform/errors"
	"github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/domain/dossier"
)

const tracerName = "github.com/KeldorKatarn/PanzerCorps-DossierTool-sub001/internal/services/dossier/storage"

// Gateway is the single entry point for dossier persistence. Decode failures
// surface as deserialization errors and write failures as IO errors; a
// failed load never returns a partial dossier.
type Gateway struct {
	codec  Codec
	tracer trace.Tracer
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithTracerProvider traces through tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) GatewayOption {
	return func(g *Gateway) {
		if tp != nil {
			g.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewGateway returns a gateway using codec.
func NewGateway(codec Codec, opts ...GatewayOption) *Gateway {
	g := &Gateway{codec: codec, tracer: otel.Tracer(tracerName)}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Codec returns the gateway's codec.
func (g *Gateway) Codec() Codec {
	return g.codec
}

// LoadFrom decodes a dossier from r.
func (g *Gateway) LoadFrom(ctx context.Context, r io.Reader) (_ *dossier.Dossier, err error) {
	ctx, span := g.start(ctx, "storage.load")
	defer func() { finish(span, err) }()
	return g.load(ctx, r)
}

func (g *Gateway) load(ctx context.Context, r io.Reader) (*dossier.Dossier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, err := g.codec.Decode(r)
	if err != nil {
		if apperrors.IsDeserialization(err) || apperrors.IsIO(err) {
			return nil, err
		}
		return nil, apperrors.Wrap(ErrMalformed.Code, ErrMalformed.Message, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// SaveTo encodes d to w. Nothing is written when encoding fails.
func (g *Gateway) SaveTo(ctx context.Context, d *dossier.Dossier, w io.Writer) (err error) {
	ctx, span := g.start(ctx, "storage.save")
	defer func() { finish(span, err) }()
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := g.codec.Encode(&buf, d); err != nil {
		return apperrors.Wrap(ErrWrite.Code, ErrWrite.Message, err)
	}
	span.SetAttributes(attribute.Int("dossier.bytes", buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		return apperrors.Wrap(ErrWrite.Code, ErrWrite.Message, err)
	}
	return nil
}

// LoadFile decodes the dossier stored at path.
func (g *Gateway) LoadFile(ctx context.Context, path string) (_ *dossier.Dossier, err error) {
	ctx, span := g.start(ctx, "storage.load_file", attribute.String("dossier.path", path))
	defer func() { finish(span, err) }()
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(ErrRead.Code, ErrRead.Message, err)
	}
	defer f.Close()
	return g.load(ctx, f)
}

// SaveFile writes d to path through a temporary file in the same directory,
// so readers see either the old file or the complete new one.
func (g *Gateway) SaveFile(ctx context.Context, d *dossier.Dossier, path string) (err error) {
	ctx, span := g.start(ctx, "storage.save_file", attribute.String("dossier.path", path))
	defer func() { finish(span, err) }()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return apperrors.Wrap(ErrWrite.Code, ErrWrite.Message, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err := g.SaveTo(ctx, d, tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return apperrors.Wrap(ErrWrite.Code, ErrWrite.Message, err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.Wrap(ErrWrite.Code, ErrWrite.Message, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		committed = true
		return apperrors.Wrap(ErrWrite.Code, fmt.Sprintf("replace %s", path), err)
	}
	committed = true
	return nil
}

func (g *Gateway) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("dossier.codec", g.codec.Name()))
	return g.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.code", string(apperrors.CodeOf(err))))
	}
	span.End()
}
