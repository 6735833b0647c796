package service

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"planta/internal/texto"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Canonical fields of the budget import. Sheet headers are mapped onto these
// by configuration, never by column position.
const (
	CampoIDExterno      = "id_externo"
	CampoCliente        = "cliente"
	CampoFecha          = "fecha"
	CampoEstado         = "estado"
	CampoTotal          = "total"
	CampoPresupuesto    = "presupuesto"
	CampoArticulo       = "articulo"
	CampoDescripcion    = "descripcion"
	CampoCantidad       = "cantidad"
	CampoPrecioUnitario = "precio_unitario"
	CampoSubtotal       = "subtotal"
	CampoDiferencia     = "diferencia"
)

var (
	camposPresupuesto = map[string]bool{CampoIDExterno: true, CampoCliente: false, CampoFecha: false, CampoEstado: false, CampoTotal: false}
	camposDetalle     = map[string]bool{
		CampoPresupuesto: true, CampoArticulo: true, CampoDescripcion: false, CampoCantidad: false,
		CampoPrecioUnitario: false, CampoSubtotal: false, CampoDiferencia: false,
	}
)

// MapeoPestana maps canonical fields to the header text of one sheet tab.
type MapeoPestana struct {
	Pestana  string            `yaml:"pestana"`
	Columnas map[string]string `yaml:"columnas"`
}

type MapeoPlanilla struct {
	Presupuestos MapeoPestana `yaml:"presupuestos"`
	Detalles     MapeoPestana `yaml:"detalles"`
}

func CargarMapeo(path string) (*MapeoPlanilla, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer mapeo de planilla: %w", err)
	}
	return ParsearMapeo(raw)
}

// ParsearMapeo decodes and validates a YAML mapping. Unknown fields and
// missing required fields are rejected here, before any sheet is read.
func ParsearMapeo(raw []byte) (*MapeoPlanilla, error) {
	var m MapeoPlanilla
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("mapeo de planilla invalido: %w", err)
	}
	if err := validarPestana("presupuestos", m.Presupuestos, camposPresupuesto); err != nil {
		return nil, err
	}
	if err := validarPestana("detalles", m.Detalles, camposDetalle); err != nil {
		return nil, err
	}
	return &m, nil
}

func validarPestana(nombre string, p MapeoPestana, campos map[string]bool) error {
	if strings.TrimSpace(p.Pestana) == "" {
		return fmt.Errorf("mapeo %s: falta el nombre de la pestana", nombre)
	}
	for campo := range p.Columnas {
		if _, ok := campos[campo]; !ok {
			return fmt.Errorf("mapeo %s: campo desconocido %q", nombre, campo)
		}
	}
	for campo, requerido := range campos {
		if requerido && strings.TrimSpace(p.Columnas[campo]) == "" {
			return fmt.Errorf("mapeo %s: falta la columna del campo %q", nombre, campo)
		}
	}
	return nil
}

// indices resolves each mapped field to its column in the header row.
// Headers compare accent and case insensitive.
func (p MapeoPestana) indices(encabezado []string, campos map[string]bool) (map[string]int, error) {
	pos := make(map[string]int, len(encabezado))
	for i, h := range encabezado {
		k := texto.Normalizar(h)
		if _, ok := pos[k]; !ok && k != "" {
			pos[k] = i
		}
	}
	out := make(map[string]int, len(p.Columnas))
	var faltan []string
	for campo, header := range p.Columnas {
		i, ok := pos[texto.Normalizar(header)]
		if !ok {
			if campos[campo] {
				faltan = append(faltan, header)
			}
			continue
		}
		out[campo] = i
	}
	if len(faltan) > 0 {
		sort.Strings(faltan)
		return nil, fmt.Errorf("pestana %s: faltan columnas %s", p.Pestana, strings.Join(faltan, ", "))
	}
	return out, nil
}

// fila reads mapped cells from one row; short rows yield empty strings.
type fila struct {
	celdas []string
	idx    map[string]int
}

func (f fila) texto(campo string) string {
	i, ok := f.idx[campo]
	if !ok || i >= len(f.celdas) {
		return ""
	}
	return strings.TrimSpace(f.celdas[i])
}

func (f fila) vacia() bool {
	for _, c := range f.celdas {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (f fila) decimal(campo string) (decimal.Decimal, error) {
	return parsearDecimal(f.texto(campo))
}

func (f fila) fecha(campo string) (*time.Time, error) {
	return parsearFecha(f.texto(campo))
}

// parsearDecimal accepts "1234.5", "1.234,56", "$ 1,234.56" and blanks (zero).
func parsearDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" || s == "-" {
		return decimal.Zero, nil
	}
	coma := strings.LastIndex(s, ",")
	punto := strings.LastIndex(s, ".")
	switch {
	case coma >= 0 && punto >= 0 && coma > punto:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case coma >= 0 && punto >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case coma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

var formatosFecha = []string{"02/01/2006", "2/1/2006", "2006-01-02", "02-01-2006", "01-02-06"}

func parsearFecha(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, f := range formatosFecha {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("fecha invalida %q", s)
}
