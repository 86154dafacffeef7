// seed_catalog genera un script SQL para poblar el catálogo de productos a partir del
// XML de catálogo de un proveedor (suelen venir en ISO-8859-1).
//
// Uso: go run ./cmd/seed_catalog catalogo.xml [salida.sql]
// Por defecto escribe seeds/catalog.sql en la raíz del módulo.
//
// Formato esperado:
//
//	<catalogo proveedor="Acme">
//	  <producto codigo="12345678905" nombre="Solución salina" umbral="10"/>
//	</catalogo>
package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// productNamespace base de los IDs: el mismo código genera siempre el mismo UUID.
var productNamespace = uuid.MustParse("5b0f6c1e-2d43-4a8e-9c57-0f3e7a2b9d10")

type catalogo struct {
	Proveedor string     `xml:"proveedor,attr"`
	Productos []producto `xml:"producto"`
}

type producto struct {
	Codigo    string `xml:"codigo,attr"`
	Nombre    string `xml:"nombre,attr"`
	Proveedor string `xml:"proveedor,attr"`
	Umbral    string `xml:"umbral,attr"`
}

type catalogItem struct {
	ID        string
	Code      string
	Name      string
	Supplier  string
	Threshold int
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: seed_catalog catalogo.xml [salida.sql]")
		os.Exit(2)
	}
	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir XML: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	items, skipped, err := parseCatalog(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar XML: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join(findModuleRoot(), "seeds", "catalog.sql")
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Crear directorio: %v\n", err)
		os.Exit(1)
	}
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, items, filepath.Base(os.Args[1])); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d productos, %d descartados\n", outPath, len(items), skipped)
}

// parseCatalog lee el XML y devuelve los productos válidos ordenados por código.
// Un código repetido se queda con la última aparición.
func parseCatalog(r io.Reader) ([]catalogItem, int, error) {
	var c catalogo
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		switch strings.ToUpper(charset) {
		case "ISO-8859-1", "ISO8859-1", "LATIN1":
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		case "WINDOWS-1252", "CP1252":
			return transform.NewReader(input, charmap.Windows1252.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&c); err != nil {
		return nil, 0, err
	}

	byCode := make(map[string]catalogItem)
	skipped := 0
	for _, p := range c.Productos {
		code := strings.TrimSpace(p.Codigo)
		name := strings.TrimSpace(p.Nombre)
		if code == "" || name == "" {
			skipped++
			continue
		}
		threshold := 0
		if s := strings.TrimSpace(p.Umbral); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				skipped++
				continue
			}
			threshold = n
		}
		supplier := strings.TrimSpace(p.Proveedor)
		if supplier == "" {
			supplier = strings.TrimSpace(c.Proveedor)
		}
		key := strings.ToLower(code)
		byCode[key] = catalogItem{
			ID:        uuid.NewSHA1(productNamespace, []byte(key)).String(),
			Code:      code,
			Name:      name,
			Supplier:  supplier,
			Threshold: threshold,
		}
	}

	items := make([]catalogItem, 0, len(byCode))
	for _, it := range byCode {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Code < items[j].Code })
	return items, skipped, nil
}

// writeSQL emite un INSERT por producto; re-ejecutar el script actualiza nombre,
// proveedor y umbral sin duplicar.
func writeSQL(w io.Writer, items []catalogItem, source string) error {
	if _, err := fmt.Fprintf(w, "-- Catálogo de productos\n-- Generado desde %s\n\n", source); err != nil {
		return err
	}
	for _, it := range items {
		_, err := fmt.Fprintf(w,
			"INSERT INTO products (id, product_code, name, supplier, reorder_threshold)\n"+
				"VALUES ('%s', '%s', '%s', '%s', %d)\n"+
				"ON CONFLICT (lower(product_code)) DO UPDATE SET name = EXCLUDED.name, supplier = EXCLUDED.supplier,\n"+
				"  reorder_threshold = EXCLUDED.reorder_threshold, updated_at = now();\n",
			it.ID, escapeSQL(it.Code), escapeSQL(it.Name), escapeSQL(it.Supplier), it.Threshold)
		if err != nil {
			return err
		}
	}
	return nil
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
