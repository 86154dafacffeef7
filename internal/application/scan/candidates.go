package scan

import (
	"strings"
	"time"

	"github.com/jhoicas/stock-control/internal/domain/barcode"
)

// CandidateSource identifica de dónde sale un código candidato.
type CandidateSource int

const (
	SourceRaw        CandidateSource = iota // código tal como vino en el escaneo
	SourceNormalized                        // sin ceros a la izquierda
	SourceHint                              // código elegido a mano o enviado por el cliente
)

// CandidateOrder es el orden en que se prueban los códigos contra el catálogo.
// Cada candidato numérico va seguido de su variante sin ceros a la izquierda.
var CandidateOrder = []CandidateSource{SourceRaw, SourceNormalized, SourceHint}

// Query es lo que se sabe de un escaneo antes de ir al almacén.
type Query struct {
	RawCode        string
	NormalizedCode string
	CodeHint       string
	LotNumber      string
	Expiry         *time.Time
}

// QueryFromDecoded arma la consulta a partir de un código decodificado.
func QueryFromDecoded(d *barcode.Decoded) Query {
	q := Query{
		RawCode:        d.RawProductCode,
		NormalizedCode: d.NormalizedProductCode,
		LotNumber:      d.LotNumber,
	}
	if t, ok := d.Expiry(); ok {
		q.Expiry = &t
	}
	return q
}

func (q Query) source(s CandidateSource) string {
	switch s {
	case SourceRaw:
		return q.RawCode
	case SourceNormalized:
		return q.NormalizedCode
	case SourceHint:
		return q.CodeHint
	}
	return ""
}

// CandidateCodes devuelve los códigos a probar, en orden y sin duplicados.
func CandidateCodes(q Query) []string {
	seen := make(map[string]struct{}, 6)
	out := make([]string, 0, 6)
	add := func(code string) {
		if code == "" {
			return
		}
		key := strings.ToLower(code)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, code)
	}
	for _, src := range CandidateOrder {
		code := strings.TrimSpace(q.source(src))
		add(code)
		if isNumeric(code) {
			add(strings.TrimLeft(code, "0"))
		}
	}
	return out
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
