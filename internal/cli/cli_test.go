package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/vitrina/internal/fetch"
	"github.com/hyperjump/vitrina/internal/fetcher"
	"github.com/hyperjump/vitrina/internal/fixtures"
	"github.com/xuri/excelize/v2"
)

func catalogResults(t *testing.T) []json.RawMessage {
	t.Helper()
	cat, err := fixtures.Default()
	if err != nil {
		t.Fatalf("fixtures.Default: %v", err)
	}
	out := make([]json.RawMessage, 0, len(cat.Listings))
	for _, l := range cat.Listings {
		b, err := json.Marshal(l)
		if err != nil {
			t.Fatalf("marshal listing: %v", err)
		}
		out = append(out, b)
	}
	return out
}

func productPayload(t *testing.T) json.RawMessage {
	t.Helper()
	cat, err := fixtures.Default()
	if err != nil {
		t.Fatalf("fixtures.Default: %v", err)
	}
	b, err := json.Marshal(cat.Products[0])
	if err != nil {
		t.Fatalf("marshal product: %v", err)
	}
	return b
}

func render(t *testing.T, state fetcher.SearchState, format OutputFormat) string {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, state, format); err != nil {
		t.Fatalf("WriteSearchResults(%s): %v", format, err)
	}
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{" JSON ", OutputJSON, false},
		{"compact", OutputCompact, false},
		{"xlsx", OutputXLSX, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteSearchResults_text(t *testing.T) {
	out := render(t, fetcher.SearchState{Query: "iphone", Results: catalogResults(t), HasSearched: true}, OutputText)
	for _, sub := range []string{
		`3 resultados para "iphone"`,
		"Apple iPhone 13 (128 GB) - Medianoche",
		"$ 1.367.999",
		"Mismo precio en 12 cuotas de $ 113.999,92",
		"Envío gratis",
		"4.9 ★★★★☆ (35)",
		"ID: MLA555555555 | Usado",
	} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteSearchResults_textStates(t *testing.T) {
	tests := []struct {
		name  string
		state fetcher.SearchState
		want  []string
	}{
		{
			name:  "loading",
			state: fetcher.SearchState{Query: "iphone", IsLoading: true},
			want:  []string{"Buscando productos...", "Estamos buscando los mejores productos para: iphone"},
		},
		{
			name:  "error",
			state: fetcher.SearchState{Query: "iphone", Error: fetch.MessageNetwork, Kind: fetch.KindNetwork, HasSearched: true},
			want:  []string{"Oops! Algo salió mal", fetch.MessageNetwork},
		},
		{
			name:  "empty",
			state: fetcher.SearchState{Query: "zzz", Results: []json.RawMessage{}, HasSearched: true},
			want:  append([]string{"No encontramos lo que buscas", `No hay productos que coincidan con "zzz"`, "Te sugerimos:"}, Suggestions...),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := render(t, tt.state, OutputText)
			for _, sub := range tt.want {
				if !strings.Contains(out, sub) {
					t.Errorf("output missing %q:\n%s", sub, out)
				}
			}
		})
	}
}

func TestWriteSearchResults_textInitialIsBlank(t *testing.T) {
	if out := render(t, fetcher.SearchState{Results: []json.RawMessage{}}, OutputText); out != "" {
		t.Errorf("initial state should render nothing, got %q", out)
	}
}

func TestWriteSearchResults_compact(t *testing.T) {
	out := render(t, fetcher.SearchState{Query: "iphone", Results: catalogResults(t), HasSearched: true}, OutputCompact)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "MLA123456789\t$ 1.367.999\t") {
		t.Errorf("first line = %q", lines[0])
	}

	out = render(t, fetcher.SearchState{Error: fetch.MessageMockNotReady, Kind: fetch.KindMockNotReady}, OutputCompact)
	if !strings.HasPrefix(out, "error\tmock-config-error\t") {
		t.Errorf("compact error = %q", out)
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	out := render(t, fetcher.SearchState{Query: "iphone", Results: catalogResults(t), HasSearched: true}, OutputJSON)
	var decoded struct {
		Query   string            `json:"query"`
		Results []json.RawMessage `json:"results"`
		Error   string            `json:"error"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if decoded.Query != "iphone" || len(decoded.Results) != 3 || decoded.Error != "" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteSearchResults_XLSX(t *testing.T) {
	var buf bytes.Buffer
	state := fetcher.SearchState{Query: "iphone", Results: catalogResults(t), HasSearched: true}
	if err := WriteSearchResults(&buf, state, OutputXLSX); err != nil {
		t.Fatalf("WriteSearchResults(xlsx): %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(resultsSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("want header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[1][0] != "MLA123456789" || rows[3][4] != "Usado" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestWriteSearchResults_XLSXRejectsError(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSearchResults(&buf, fetcher.SearchState{Error: fetch.MessageNetwork}, OutputXLSX)
	if err == nil {
		t.Fatal("expected error exporting a failed search")
	}
}

func TestWriteProduct_text(t *testing.T) {
	var buf bytes.Buffer
	state := fetcher.DetailState{ID: "MLA998877665", Product: productPayload(t), HasLoaded: true}
	if err := WriteProduct(&buf, state, OutputText); err != nil {
		t.Fatalf("WriteProduct: %v", err)
	}
	out := buf.String()
	for _, sub := range []string{
		"Nuevo | +5 vendidos",
		"Apple iPhone 16 Pro (256gb)",
		"5.0 ★★★★★ (1)",
		"Antes: $ 3.023.244,99",
		"$ 2.509.380,59  17% OFF",
		"Mismo precio en 9 cuotas de $ 278.820,07",
		"Llega gratis",
		"Stock disponible (3)",
		"Vendido desde CABA, Buenos Aires",
		"Marca: Apple",
		"Descripción",
	} {
		if !strings.Contains(out, sub) {
			t.Errorf("product output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteProduct_errors(t *testing.T) {
	tests := []struct {
		name  string
		state fetcher.DetailState
		want  []string
	}{
		{"not found", fetcher.DetailState{ID: "X", Error: fetch.MessageNotFound, Kind: fetch.KindNotFound, HasLoaded: true},
			[]string{"Producto no encontrado", "El producto que buscas no existe o ha sido eliminado."}},
		{"invalid id", fetcher.DetailState{Error: fetch.MessageIDRequired, Kind: fetch.KindInvalidInput, HasLoaded: true},
			[]string{"Error al cargar el producto", fetch.MessageIDRequired}},
		{"loading", fetcher.DetailState{ID: "X", IsLoading: true}, []string{"Cargando producto..."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteProduct(&buf, tt.state, OutputText); err != nil {
				t.Fatalf("WriteProduct: %v", err)
			}
			for _, sub := range tt.want {
				if !strings.Contains(buf.String(), sub) {
					t.Errorf("output missing %q:\n%s", sub, buf.String())
				}
			}
		})
	}
}

func TestWriteProduct_JSON(t *testing.T) {
	var buf bytes.Buffer
	state := fetcher.DetailState{ID: "MLA998877665", Product: productPayload(t), HasLoaded: true}
	if err := WriteProduct(&buf, state, OutputJSON); err != nil {
		t.Fatalf("WriteProduct: %v", err)
	}
	var decoded struct {
		ID      string `json:"id"`
		Product struct {
			Title string `json:"title"`
		} `json:"product"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.ID != "MLA998877665" || !strings.Contains(decoded.Product.Title, "iPhone 16 Pro") {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Apple iPhone 13", 5); got != "Apple..." {
		t.Errorf("Truncate = %q", got)
	}
}
