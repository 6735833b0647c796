package service

import (
	"context"
	"time"

	"planta/internal/apierror"
	"planta/internal/dto"
	"planta/internal/metrics"
	"planta/internal/model"
	"planta/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// FuentePlanilla returns the raw rows of one tab of a sheet, header first.
type FuentePlanilla interface {
	Filas(ctx context.Context, hojaID, pestana string) ([][]string, error)
}

// PresupuestoService imports budgets one way, sheet to database.
type PresupuestoService interface {
	Sincronizar(ctx context.Context, hojaID string) (*dto.SincronizacionResponse, error)
	SincronizarAsync(ctx context.Context, hojaID string) (*dto.SincronizacionResponse, error)
	Listar(ctx context.Context, hojaID string) ([]dto.PresupuestoResponse, error)
	Obtener(ctx context.Context, id uint) (*dto.PresupuestoResponse, error)
}

type presupuestoService struct {
	repo    repository.PresupuestoRepository
	fuente  FuentePlanilla
	mapeo   *MapeoPlanilla
	cola    Encolador
	metrics *metrics.Metrics
}

func NewPresupuestoService(
	repo repository.PresupuestoRepository,
	fuente FuentePlanilla,
	mapeo *MapeoPlanilla,
	cola Encolador,
	m *metrics.Metrics,
) PresupuestoService {
	return &presupuestoService{repo: repo, fuente: fuente, mapeo: mapeo, cola: cola, metrics: m}
}

func (s *presupuestoService) Sincronizar(ctx context.Context, hojaID string) (*dto.SincronizacionResponse, error) {
	if hojaID == "" {
		return nil, apierror.Invalid("Falta el identificador de la hoja")
	}
	if s.mapeo == nil || s.fuente == nil {
		return nil, apierror.State("La sincronizacion de presupuestos no esta configurada")
	}
	ahora := time.Now()
	presupuestos, omitidas, err := s.leer(ctx, hojaID, ahora)
	if err != nil {
		return nil, err
	}

	detalles := 0
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, p := range presupuestos {
			detalles += len(p.Detalles)
			if err := s.repo.UpsertTx(tx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apierror.Persistence("sincronizar presupuestos", err)
	}
	s.metrics.FilasSincronizadas(len(presupuestos)+detalles, omitidas)
	log.Info().Str("hoja_id", hojaID).
		Int("presupuestos", len(presupuestos)).
		Int("detalles", detalles).
		Int("omitidas", omitidas).
		Msg("presupuestos sincronizados")
	return &dto.SincronizacionResponse{
		HojaID:       hojaID,
		Presupuestos: len(presupuestos),
		Detalles:     detalles,
		Omitidas:     omitidas,
		Fecha:        ahora,
	}, nil
}

// leer maps both tabs into typed records. A row that does not parse is
// skipped and counted; a missing header fails the whole import.
func (s *presupuestoService) leer(ctx context.Context, hojaID string, ahora time.Time) ([]*model.Presupuesto, int, error) {
	cab, err := s.fuente.Filas(ctx, hojaID, s.mapeo.Presupuestos.Pestana)
	if err != nil {
		return nil, 0, apierror.Persistence("leer la planilla", err)
	}
	det, err := s.fuente.Filas(ctx, hojaID, s.mapeo.Detalles.Pestana)
	if err != nil {
		return nil, 0, apierror.Persistence("leer la planilla", err)
	}
	if len(cab) == 0 {
		return nil, 0, apierror.Invalid("La pestana %s esta vacia", s.mapeo.Presupuestos.Pestana)
	}
	idxCab, err := s.mapeo.Presupuestos.indices(cab[0], camposPresupuesto)
	if err != nil {
		return nil, 0, apierror.Invalid("%s", err.Error())
	}
	var idxDet map[string]int
	if len(det) > 0 {
		if idxDet, err = s.mapeo.Detalles.indices(det[0], camposDetalle); err != nil {
			return nil, 0, apierror.Invalid("%s", err.Error())
		}
	}

	omitidas := 0
	porID := make(map[string]*model.Presupuesto)
	var orden []*model.Presupuesto
	for n, celdas := range cab[1:] {
		f := fila{celdas: celdas, idx: idxCab}
		if f.vacia() {
			continue
		}
		p, err := presupuestoDeFila(f, hojaID, ahora)
		if err != nil {
			omitidas++
			log.Warn().Err(err).Str("hoja_id", hojaID).Int("fila", n+2).Msg("fila de presupuesto omitida")
			continue
		}
		if _, dup := porID[p.IDExterno]; dup {
			omitidas++
			log.Warn().Str("hoja_id", hojaID).Int("fila", n+2).Str("id_externo", p.IDExterno).Msg("presupuesto duplicado omitido")
			continue
		}
		porID[p.IDExterno] = p
		orden = append(orden, p)
	}

	if len(det) > 1 {
		for n, celdas := range det[1:] {
			f := fila{celdas: celdas, idx: idxDet}
			if f.vacia() {
				continue
			}
			p, ok := porID[f.texto(CampoPresupuesto)]
			if !ok {
				omitidas++
				log.Warn().Str("hoja_id", hojaID).Int("fila", n+2).Str("presupuesto", f.texto(CampoPresupuesto)).Msg("detalle sin presupuesto omitido")
				continue
			}
			d, err := detalleDeFila(f)
			if err != nil {
				omitidas++
				log.Warn().Err(err).Str("hoja_id", hojaID).Int("fila", n+2).Msg("fila de detalle omitida")
				continue
			}
			p.Detalles = append(p.Detalles, d)
		}
	}
	return orden, omitidas, nil
}

func presupuestoDeFila(f fila, hojaID string, ahora time.Time) (*model.Presupuesto, error) {
	id := f.texto(CampoIDExterno)
	if id == "" {
		return nil, apierror.Invalid("fila sin id de presupuesto")
	}
	fecha, err := f.fecha(CampoFecha)
	if err != nil {
		return nil, err
	}
	total, err := f.decimal(CampoTotal)
	if err != nil {
		return nil, err
	}
	return &model.Presupuesto{
		IDExterno:      id,
		HojaID:         hojaID,
		Cliente:        f.texto(CampoCliente),
		Fecha:          fecha,
		Estado:         f.texto(CampoEstado),
		Total:          total,
		SincronizadoEn: ahora,
	}, nil
}

func detalleDeFila(f fila) (model.PresupuestoDetalle, error) {
	d := model.PresupuestoDetalle{
		Articulo:    f.texto(CampoArticulo),
		Descripcion: f.texto(CampoDescripcion),
	}
	if d.Articulo == "" {
		return d, apierror.Invalid("detalle sin articulo")
	}
	var err error
	if d.Cantidad, err = f.decimal(CampoCantidad); err != nil {
		return d, err
	}
	if d.PrecioUnitario, err = f.decimal(CampoPrecioUnitario); err != nil {
		return d, err
	}
	if d.Subtotal, err = f.decimal(CampoSubtotal); err != nil {
		return d, err
	}
	if d.Diferencia, err = f.decimal(CampoDiferencia); err != nil {
		return d, err
	}
	if _, ok := f.idx[CampoSubtotal]; !ok {
		d.Subtotal = d.Cantidad.Mul(d.PrecioUnitario).Round(2)
	}
	return d, nil
}

func (s *presupuestoService) SincronizarAsync(ctx context.Context, hojaID string) (*dto.SincronizacionResponse, error) {
	if hojaID == "" {
		return nil, apierror.Invalid("Falta el identificador de la hoja")
	}
	if s.cola == nil {
		return nil, apierror.State("La cola de trabajos no esta disponible")
	}
	if err := s.cola.EnqueueSincronizacion(ctx, SincronizacionJob{HojaID: hojaID}); err != nil {
		return nil, apierror.Persistence("encolar la sincronizacion", err)
	}
	return &dto.SincronizacionResponse{HojaID: hojaID, Encolado: true, Fecha: time.Now()}, nil
}

func presupuestoToResponse(p *model.Presupuesto) dto.PresupuestoResponse {
	resp := dto.PresupuestoResponse{
		ID:             p.ID,
		IDExterno:      p.IDExterno,
		HojaID:         p.HojaID,
		Cliente:        p.Cliente,
		Fecha:          p.Fecha,
		Estado:         p.Estado,
		Total:          p.Total,
		SincronizadoEn: p.SincronizadoEn,
	}
	for _, d := range p.Detalles {
		resp.Detalles = append(resp.Detalles, dto.PresupuestoDetalleResponse{
			Articulo:       d.Articulo,
			Descripcion:    d.Descripcion,
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			Subtotal:       d.Subtotal,
			Diferencia:     d.Diferencia,
		})
	}
	return resp
}

func (s *presupuestoService) Listar(ctx context.Context, hojaID string) ([]dto.PresupuestoResponse, error) {
	ps, err := s.repo.List(ctx, hojaID)
	if err != nil {
		return nil, apierror.Persistence("listar presupuestos", err)
	}
	out := make([]dto.PresupuestoResponse, 0, len(ps))
	for i := range ps {
		out = append(out, presupuestoToResponse(&ps[i]))
	}
	return out, nil
}

func (s *presupuestoService) Obtener(ctx context.Context, id uint) (*dto.PresupuestoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "obtener el presupuesto", "Presupuesto %d no encontrado", id)
	}
	resp := presupuestoToResponse(p)
	return &resp, nil
}
