package infra

// pdf.go renders the two terminal-state documents of a cart with go-pdf/fpdf:
//   - production labels, one 100×60 mm page per article line
//   - the consolidation report, an A4 table of the ingredients consumed
//
// Files are written to storagePath and the path is returned.

import (
	"fmt"
	"os"
	"path/filepath"

	"planta/internal/service"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// cantidad formats a quantity for print with three decimals.
func cantidad(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(3)
}

func prepararDirectorio(storagePath string) error {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return fmt.Errorf("pdf: create storage dir: %w", err)
	}
	return nil
}

// GenerarEtiquetasPDF writes etiquetas_carro_{id}.pdf.
func GenerarEtiquetasPDF(job service.EtiquetasJob, storagePath string) (string, error) {
	if len(job.Items) == 0 {
		return "", fmt.Errorf("pdf: carro %d sin articulos", job.CarroID)
	}
	if err := prepararDirectorio(storagePath); err != nil {
		return "", err
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("etiquetas_carro_%d.pdf", job.CarroID))

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 60, Ht: 100},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, it := range job.Items {
		pdf.AddPage()
		pageW, _ := pdf.GetPageSize()
		contentW := pageW - 8

		// ── Article ──────────────────────────────────────────────────────────
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(contentW, 8, tr(it.Descripcion), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW, 5, tr("Artículo "+it.Numero), "", 1, "L", false, 0, "")
		pdf.Ln(2)
		pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
		pdf.Ln(2)

		// ── Quantities ───────────────────────────────────────────────────────
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(contentW/2, 7, "Cantidad: "+cantidad(it.Cantidad), "", 0, "L", false, 0, "")
		if it.Kilos > 0 {
			pdf.CellFormat(contentW/2, 7, "Kilos: "+cantidad(it.Kilos), "", 0, "R", false, 0, "")
		}
		pdf.Ln(9)

		// ── Barcode text and trace ───────────────────────────────────────────
		if it.CodigoBarras != "" {
			pdf.SetFont("Courier", "B", 16)
			pdf.CellFormat(contentW, 9, it.CodigoBarras, "1", 1, "C", false, 0, "")
		}
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(contentW, 4,
			tr(fmt.Sprintf("Carro %d (%s) · %s", job.CarroID, job.TipoCarro, job.Fecha.Format("02/01/2006 15:04"))),
			"", 1, "L", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

// GenerarInformePDF writes informe_carro_{id}.pdf with one row per
// consolidated ingredient. Rows short of stock are marked.
func GenerarInformePDF(job service.InformeJob, storagePath string) (string, error) {
	if err := prepararDirectorio(storagePath); err != nil {
		return "", err
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("informe_carro_%d.pdf", job.CarroID))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, tr("Consolidación de ingredientes"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Carro %d (%s)  %s", job.CarroID, job.TipoCarro, job.Fecha.Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// ── Table ────────────────────────────────────────────────────────────────
	cols := []struct {
		titulo string
		ancho  float64
		align  string
	}{
		{"Ingrediente", 0.34, "L"},
		{"Unidad", 0.10, "C"},
		{"Cantidad", 0.14, "R"},
		{"Stock", 0.14, "R"},
		{"Faltante", 0.14, "R"},
		{"Origen", 0.14, "C"},
	}
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range cols {
		pdf.CellFormat(contentW*c.ancho, 6, c.titulo, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	faltantes := 0
	for _, ing := range job.Ingredientes {
		stock := ing.StockActual
		if ing.StockUsuario != nil {
			stock = *ing.StockUsuario
		}
		valores := []string{
			tr(ing.Nombre),
			tr(ing.UnidadMedida),
			cantidad(ing.Cantidad),
			cantidad(stock),
			"",
			ing.Origen,
		}
		if !ing.Suficiente {
			valores[4] = cantidad(ing.Faltante)
			faltantes++
		}
		for i, c := range cols {
			pdf.CellFormat(contentW*c.ancho, 5, valores[i], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, fmt.Sprintf("%d ingredientes, %d con faltante", len(job.Ingredientes), faltantes), "", 1, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
