package barcode

import (
	"regexp"
	"strings"
	"time"

	"github.com/jhoicas/stock-control/internal/domain"
)

// Format identifica el reconocedor que produjo un Decoded.
type Format string

const (
	FormatThreeLetterVendor Format = "3PR"
	FormatGS1Bracketed      Format = "GS1"
	FormatGS1FlatStrict     Format = "GS1_FLAT"
	FormatGS1FlatScan       Format = "GS1_FLAT_SCAN"
	FormatUnknown           Format = "UNKNOWN"
)

// DefaultVendorPrefix prefijo del formato propietario "PREFIJO+dígitos**lote**vencimiento".
const DefaultVendorPrefix = "3PR"

// Decoded es el resultado normalizado de un escaneo. Inmutable una vez construido.
type Decoded struct {
	RawProductCode        string `json:"raw_product_code"`
	NormalizedProductCode string `json:"normalized_product_code"`
	LotNumber             string `json:"lot_number"`
	ExpiryDate            string `json:"expiry_date"` // DD.MM.20YY en GS1; literal en formato de proveedor
	Format                Format `json:"format"`
}

func newDecoded(format Format, code string) *Decoded {
	return &Decoded{
		RawProductCode:        code,
		NormalizedProductCode: NormalizeCode(code),
		Format:                format,
	}
}

// PlainCode construye un Decoded para un texto que es solo un código de producto
// (EAN impreso, código interno) sin estructura de AIs.
func PlainCode(code string) *Decoded {
	return newDecoded(FormatUnknown, code)
}

var expiryLayouts = []string{"02.01.2006", "2006-01-02"}

// Expiry interpreta ExpiryDate. Un día "00" (GS1) equivale al último día del mes.
func (d *Decoded) Expiry() (time.Time, bool) {
	return ParseExpiry(d.ExpiryDate)
}

// ParseExpiry interpreta una fecha DD.MM.YYYY o YYYY-MM-DD.
func ParseExpiry(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if strings.HasPrefix(s, "00.") && len(s) == len("00.01.2006") {
		t, err := time.Parse("02.01.2006", "01"+s[2:])
		if err != nil {
			return time.Time{}, false
		}
		return t.AddDate(0, 1, -1), true
	}
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// formatGS1Date convierte YYMMDD en DD.MM.20YY (siglo fijo).
func formatGS1Date(yymmdd string) string {
	return yymmdd[4:6] + "." + yymmdd[2:4] + ".20" + yymmdd[0:2]
}

var (
	reBracketGTIN   = regexp.MustCompile(`\(01\)(\d{14})`)
	reBracketExpiry = regexp.MustCompile(`\(17\)(\d{6})`)
	reBracketLot    = regexp.MustCompile(`\(10\)([^(]+)`)
	reFlatScan      = regexp.MustCompile(`01(\d{14})17(\d{6})10([^\x1d\x1e\x1f]*)`)
)

// recognizer devuelve claimed=true cuando el formato es suyo. Si además out es nil,
// el texto es de ese formato pero está roto y la decodificación completa falla.
type recognizer func(payload string) (out *Decoded, claimed bool)

// Decoder prueba los reconocedores en orden fijo; gana el primero que reconoce.
// Es seguro para uso concurrente.
type Decoder struct {
	vendorPrefix string
	vendorCode   *regexp.Regexp
	order        []recognizer
}

// NewDecoder construye el decodificador. vendorPrefix vacío usa DefaultVendorPrefix.
func NewDecoder(vendorPrefix string) *Decoder {
	if vendorPrefix == "" {
		vendorPrefix = DefaultVendorPrefix
	}
	d := &Decoder{
		vendorPrefix: vendorPrefix,
		vendorCode:   regexp.MustCompile(regexp.QuoteMeta(vendorPrefix) + `\d+`),
	}
	// Orden de prioridad: el formato de proveedor es el más distintivo ("**" nunca
	// aparece en GS1); el plano estricto va antes del barrido por tener menos falsos positivos.
	d.order = []recognizer{
		d.decodeVendor,
		decodeBracketed,
		decodeFlatStrict,
		decodeFlatScan,
	}
	return d
}

// Decode normaliza el texto y devuelve la primera estructura reconocida.
// Sin estructura devuelve domain.ErrMalformedBarcode.
func (d *Decoder) Decode(raw string) (*Decoded, error) {
	payload := Normalize(raw)
	if payload == "" {
		return nil, domain.ErrMalformedBarcode
	}
	for _, r := range d.order {
		out, claimed := safeRecognize(r, payload)
		if !claimed {
			continue
		}
		if out == nil {
			return nil, domain.ErrMalformedBarcode
		}
		return out, nil
	}
	return nil, domain.ErrMalformedBarcode
}

// safeRecognize convierte un panic del reconocedor en "no reconocido".
func safeRecognize(r recognizer, payload string) (out *Decoded, claimed bool) {
	defer func() {
		if rec := recover(); rec != nil {
			out, claimed = nil, false
		}
	}()
	return r(payload)
}

// decodeVendor: PREFIJO<dígitos>**lote**vencimiento.
func (d *Decoder) decodeVendor(p string) (*Decoded, bool) {
	if !strings.Contains(p, "**") || !d.vendorCode.MatchString(p) {
		return nil, false
	}
	parts := strings.Split(p, "**")
	code := d.vendorCode.FindString(parts[0])
	if code == "" {
		return nil, true
	}
	out := newDecoded(FormatThreeLetterVendor, code)
	if len(parts) > 1 {
		out.LotNumber = parts[1]
	}
	if len(parts) > 2 {
		out.ExpiryDate = parts[2]
	}
	return out, true
}

// decodeBracketed: (01)GTIN(17)YYMMDD(10)LOTE con paréntesis legibles.
func decodeBracketed(p string) (*Decoded, bool) {
	gtin := reBracketGTIN.FindStringSubmatch(p)
	if gtin == nil {
		return nil, false
	}
	out := newDecoded(FormatGS1Bracketed, gtin[1])
	if m := reBracketExpiry.FindStringSubmatch(p); m != nil {
		out.ExpiryDate = formatGS1Date(m[1])
	}
	if m := reBracketLot.FindStringSubmatch(p); m != nil {
		lot := m[1]
		if i := strings.IndexAny(lot, separators); i >= 0 {
			lot = lot[:i]
		}
		out.LotNumber = lot
	}
	return out, true
}

// decodeFlatStrict: 01 + 14 dígitos al inicio, luego 17 y 10 opcionales en ese orden.
func decodeFlatStrict(p string) (*Decoded, bool) {
	if !strings.HasPrefix(p, "01") || len(p) <= 16 {
		return nil, false
	}
	gtin := p[2:16]
	if !isDigits(gtin) {
		return nil, false
	}
	out := newDecoded(FormatGS1FlatStrict, gtin)
	i := 16
	if strings.HasPrefix(p[i:], "17") {
		if len(p) < i+8 || !isDigits(p[i+2:i+8]) {
			return nil, false
		}
		out.ExpiryDate = formatGS1Date(p[i+2 : i+8])
		i += 8
	}
	i = skipSeparators(p, i)
	if strings.HasPrefix(p[i:], "10") {
		out.LotNumber, _ = readAIValue(p, i+2)
	}
	return out, true
}

// decodeFlatScan busca 01..17..10.. en cualquier posición; último recurso.
func decodeFlatScan(p string) (*Decoded, bool) {
	m := reFlatScan.FindStringSubmatch(p)
	if m == nil {
		return nil, false
	}
	out := newDecoded(FormatGS1FlatScan, m[1])
	out.ExpiryDate = formatGS1Date(m[2])
	out.LotNumber = m[3]
	return out, true
}
