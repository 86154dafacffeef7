package scan

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-control/internal/domain"
	"github.com/jhoicas/stock-control/internal/domain/barcode"
)

// plainCode: texto que no tiene estructura de AIs pero parece un código de producto
// (EAN impreso, código interno).
var plainCode = regexp.MustCompile(`^[A-Za-z0-9._\-]{1,64}$`)

// ScanInput entrada de decode_and_resolve. Los hints vienen de selectores manuales
// o campos del formulario y solo se usan cuando el escaneo no trae el dato.
type ScanInput struct {
	Raw         string
	ProductHint string
	LotHint     string
	ExpiryHint  string
}

// Interpretation es el escaneo decodificado más la consulta que se deriva de él.
type Interpretation struct {
	Decoded *barcode.Decoded // nil cuando solo se usó el hint de producto
	Query   Query
}

// ScanResult decodificación y resolución de un escaneo.
type ScanResult struct {
	Interpretation
	*Resolution
}

// UseCase punto de entrada de los escaneos: usado por retiros, registro de stock,
// cierre de órdenes de compra y transferencias.
type UseCase struct {
	decoder  *barcode.Decoder
	resolver *Resolver
	logger   zerolog.Logger
}

// NewUseCase construye el caso de uso de escaneo.
func NewUseCase(decoder *barcode.Decoder, resolver *Resolver, logger zerolog.Logger) *UseCase {
	return &UseCase{decoder: decoder, resolver: resolver, logger: logger}
}

// Decode decodifica sin tocar el almacén.
func (uc *UseCase) Decode(raw string) (*barcode.Decoded, error) {
	return uc.decoder.Decode(raw)
}

// Interpret decodifica el texto y completa lote/vencimiento con los hints.
// Un texto sin estructura que parece un código simple se toma como código (FormatUnknown).
func (uc *UseCase) Interpret(in ScanInput) (*Interpretation, error) {
	hint := strings.TrimSpace(in.ProductHint)
	if barcode.Normalize(in.Raw) == "" && hint == "" {
		return nil, domain.ErrInvalidInput
	}

	var out Interpretation
	if payload := barcode.Normalize(in.Raw); payload != "" {
		decoded, err := uc.decoder.Decode(in.Raw)
		switch {
		case err == nil:
			out.Decoded = decoded
		case errors.Is(err, domain.ErrMalformedBarcode) && plainCode.MatchString(payload):
			out.Decoded = barcode.PlainCode(payload)
		case hint == "":
			return nil, err
		}
	}

	if out.Decoded != nil {
		out.Query = QueryFromDecoded(out.Decoded)
	}
	out.Query.CodeHint = hint
	if out.Query.LotNumber == "" {
		out.Query.LotNumber = strings.TrimSpace(in.LotHint)
	}
	if out.Query.Expiry == nil {
		if t, ok := barcode.ParseExpiry(in.ExpiryHint); ok {
			out.Query.Expiry = &t
		}
	}
	return &out, nil
}

// DecodeAndResolve interpreta el escaneo y lo resuelve contra el almacén.
// Los no encontrados llegan como *ResolutionError.
func (uc *UseCase) DecodeAndResolve(ctx context.Context, in ScanInput) (*ScanResult, error) {
	interp, err := uc.Interpret(in)
	if err != nil {
		return nil, err
	}
	res, err := uc.resolver.Resolve(ctx, interp.Query)
	if err != nil {
		var rerr *ResolutionError
		if errors.As(err, &rerr) {
			uc.logger.Debug().Str("reason", rerr.Reason).Str("raw_code", interp.Query.RawCode).
				Str("lot", interp.Query.LotNumber).Msg("escaneo sin resolver")
		}
		return nil, err
	}
	return &ScanResult{Interpretation: *interp, Resolution: res}, nil
}

// Resolve expone el resolvedor para quien ya tiene una Query (selección manual).
func (uc *UseCase) Resolve(ctx context.Context, q Query) (*Resolution, error) {
	return uc.resolver.Resolve(ctx, q)
}
