package barcode

import "strings"

// separators son los caracteres de control que los codificadores GS1 usan como
// fin de campo de longitud variable (GS, RS, US).
const separators = "\x1d\x1e\x1f"

var lineBreaks = strings.NewReplacer("\r", "", "\n", "")

// Normalize limpia el texto crudo de un lector: espacios, saltos de línea,
// separadores en los extremos y el identificador de simbología (]d2, ]C1, ...).
// Una entrada vacía devuelve "" y significa "nada que decodificar".
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	s := lineBreaks.Replace(strings.TrimSpace(raw))
	s = strings.Trim(s, separators)
	if strings.HasPrefix(s, "]") && len(s) >= 3 {
		s = s[3:]
	}
	return s
}

// NormalizeCode quita los ceros a la izquierda de un código de producto.
// Nunca devuelve "" para una entrada no vacía: si solo había ceros, devuelve el original.
func NormalizeCode(code string) string {
	n := strings.TrimLeft(code, "0")
	if n == "" {
		return code
	}
	return n
}

func isSeparator(b byte) bool {
	return strings.IndexByte(separators, b) >= 0
}

func skipSeparators(payload string, i int) int {
	for i < len(payload) && isSeparator(payload[i]) {
		i++
	}
	return i
}

// readAIValue lee un valor de longitud variable desde start hasta el siguiente
// separador o el fin del texto. Devuelve el valor y la posición siguiente al separador.
func readAIValue(payload string, start int) (string, int) {
	if start >= len(payload) {
		return "", len(payload)
	}
	end := strings.IndexAny(payload[start:], separators)
	if end < 0 {
		return payload[start:], len(payload)
	}
	return payload[start : start+end], start + end + 1
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
