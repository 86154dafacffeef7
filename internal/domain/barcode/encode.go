package barcode

import (
	"fmt"
	"strings"
	"time"
)

// GS separa un AI de longitud variable del siguiente.
const GS = "\x1d"

// EncodeGS1 construye el texto GS1 plano (01 GTIN, 17 vencimiento, 10 lote) para
// imprimir etiquetas. El lote va al final para no necesitar separador.
// Códigos numéricos de menos de 14 dígitos se completan con ceros a la izquierda.
func EncodeGS1(productCode string, expiry time.Time, lot string) (string, error) {
	gtin, err := padGTIN(productCode)
	if err != nil {
		return "", err
	}
	if strings.ContainsAny(lot, separators) {
		return "", fmt.Errorf("barcode: lote con separador GS1")
	}
	var b strings.Builder
	b.WriteString("01")
	b.WriteString(gtin)
	if !expiry.IsZero() {
		b.WriteString("17")
		b.WriteString(expiry.Format("060102"))
	}
	if lot != "" {
		b.WriteString("10")
		b.WriteString(lot)
	}
	return b.String(), nil
}

// HumanReadable devuelve la línea legible (01)...(17)...(10)... de una etiqueta.
func HumanReadable(productCode string, expiry time.Time, lot string) (string, error) {
	gtin, err := padGTIN(productCode)
	if err != nil {
		return "", err
	}
	s := "(01)" + gtin
	if !expiry.IsZero() {
		s += "(17)" + expiry.Format("060102")
	}
	if lot != "" {
		s += "(10)" + lot
	}
	return s, nil
}

func padGTIN(code string) (string, error) {
	if !isDigits(code) || len(code) > 14 {
		return "", fmt.Errorf("barcode: %q no es un GTIN numérico", code)
	}
	return strings.Repeat("0", 14-len(code)) + code, nil
}
