package infra

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrHojaInvalida is returned for sheet ids that are not a plain file name.
var ErrHojaInvalida = errors.New("planilla: id de hoja invalido")

// PlanillaDir reads budget sheets exported to a directory. A sheet is either
// <hojaID>.xlsx with one tab per pestana, or one CSV per tab named
// <hojaID>_<pestana>.csv. The xlsx file wins when both exist.
type PlanillaDir struct {
	dir string
}

func NewPlanillaDir(dir string) *PlanillaDir { return &PlanillaDir{dir: dir} }

// Filas returns every row of the tab, header first. Missing tabs yield no rows.
func (p *PlanillaDir) Filas(ctx context.Context, hojaID, pestana string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if hojaID == "" || hojaID != filepath.Base(hojaID) || strings.HasPrefix(hojaID, ".") {
		return nil, ErrHojaInvalida
	}

	xlsx := filepath.Join(p.dir, hojaID+".xlsx")
	if _, err := os.Stat(xlsx); err == nil {
		return filasXLSX(xlsx, pestana)
	}
	csvPath := filepath.Join(p.dir, hojaID+"_"+strings.ReplaceAll(pestana, " ", "_")+".csv")
	if _, err := os.Stat(csvPath); err == nil {
		return filasCSV(csvPath)
	}
	return nil, fmt.Errorf("planilla: hoja %s no encontrada en %s", hojaID, p.dir)
}

func filasXLSX(path, pestana string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("planilla: abrir %s: %w", path, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(pestana)
	if err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(pestana)
	if err != nil {
		return nil, fmt.Errorf("planilla: leer pestana %s: %w", pestana, err)
	}
	return rows, nil
}

// filasCSV accepts UTF-8 or Windows-1252 input and comma or semicolon
// separators.
func filasCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("planilla: leer %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		if conv, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data); err == nil {
			data = conv
		}
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = separador(data)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("planilla: csv %s: %w", path, err)
	}
	return rows, nil
}

func separador(data []byte) rune {
	linea := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		linea = data[:i]
	}
	if bytes.Count(linea, []byte(";")) > bytes.Count(linea, []byte(",")) {
		return ';'
	}
	return ','
}
