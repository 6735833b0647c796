package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"
)

// TrabajoImpresion is one rendered label document for the printer sidecar.
type TrabajoImpresion struct {
	CarroID uint
	Archivo string // path of the rendered PDF
	Copias  int
}

// RespuestaImpresion is returned by the sidecar once the job is spooled.
type RespuestaImpresion struct {
	TrabajoID string `json:"trabajo_id"`
	Estado    string `json:"estado"`
}

// ImpresoraClient posts label PDFs to the printer sidecar, which owns the
// physical printer driver.
type ImpresoraClient struct {
	sidecarURL string
	httpClient *http.Client
}

func NewImpresoraClient(sidecarURL string) *ImpresoraClient {
	return &ImpresoraClient{
		sidecarURL: sidecarURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// Imprimir sends the PDF body to POST /imprimir. Any non-2xx status is an error.
func (c *ImpresoraClient) Imprimir(ctx context.Context, t TrabajoImpresion) (*RespuestaImpresion, error) {
	body, err := os.ReadFile(t.Archivo)
	if err != nil {
		return nil, fmt.Errorf("impresora: leer pdf: %w", err)
	}
	copias := t.Copias
	if copias <= 0 {
		copias = 1
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sidecarURL+"/imprimir", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("impresora: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("X-Carro-ID", strconv.FormatUint(uint64(t.CarroID), 10))
	req.Header.Set("X-Copias", strconv.Itoa(copias))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("impresora: sidecar unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("impresora: sidecar returned %d", resp.StatusCode)
	}

	var result RespuestaImpresion
	if resp.ContentLength != 0 {
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("impresora: decode response: %w", err)
		}
	}
	return &result, nil
}

// Salud checks GET /health; used by the health endpoint.
func (c *ImpresoraClient) Salud(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sidecarURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("impresora: health returned %d", resp.StatusCode)
	}
	return nil
}
