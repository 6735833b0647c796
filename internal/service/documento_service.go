package service

import (
	"context"
	"time"

	"planta/internal/apierror"
	"planta/internal/dto"
	"planta/internal/model"
	"planta/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DocumentoService queues the terminal-state outputs of a cart: production
// labels and the ingredient consolidation report. Rendering happens in workers.
type DocumentoService interface {
	ImprimirEtiquetas(ctx context.Context, usuarioID uuid.UUID, carroID uint) (*dto.ImpresionResponse, error)
	GenerarInforme(ctx context.Context, usuarioID uuid.UUID, carroID uint, destinatario string) (*dto.InformeResponse, error)
}

type documentoService struct {
	carros       repository.CarroRepository
	agregacion   AgregacionService
	cola         Encolador
	destinatario string
}

// NewDocumentoService builds the service. destinatario is the default report
// recipient; empty means reports are only stored.
func NewDocumentoService(carros repository.CarroRepository, agregacion AgregacionService, cola Encolador, destinatario string) DocumentoService {
	return &documentoService{carros: carros, agregacion: agregacion, cola: cola, destinatario: destinatario}
}

func (s *documentoService) confirmado(ctx context.Context, usuarioID uuid.UUID, carroID uint) (*model.Carro, error) {
	c, err := obtenerCarroPropio(ctx, s.carros, carroID, usuarioID)
	if err != nil {
		return nil, err
	}
	if c.Estado != model.EstadoConfirmado {
		return nil, apierror.State("El carro %d debe estar confirmado", carroID)
	}
	if s.cola == nil {
		return nil, apierror.State("La cola de trabajos no esta disponible")
	}
	return c, nil
}

func (s *documentoService) ImprimirEtiquetas(ctx context.Context, usuarioID uuid.UUID, carroID uint) (*dto.ImpresionResponse, error) {
	c, err := s.confirmado(ctx, usuarioID, carroID)
	if err != nil {
		return nil, err
	}
	job := EtiquetasJob{
		CarroID:   c.ID,
		UsuarioID: c.UsuarioID.String(),
		TipoCarro: c.TipoCarro,
		Fecha:     time.Now(),
		Items:     etiquetas(c),
	}
	if err := s.cola.EnqueueEtiquetas(ctx, job); err != nil {
		return nil, apierror.Persistence("encolar etiquetas", err)
	}
	log.Info().Uint("carro_id", carroID).Int("etiquetas", len(job.Items)).Msg("impresion de etiquetas encolada")
	return &dto.ImpresionResponse{
		CarroID:   carroID,
		Encolado:  true,
		Etiquetas: len(job.Items),
		Mensaje:   "Impresion encolada",
	}, nil
}

// etiquetas builds one label per article line. External carts also print
// the share of produced kilos credited to the line.
func etiquetas(c *model.Carro) []EtiquetaItem {
	var total float64
	for _, l := range c.Articulos {
		total += l.Cantidad
	}
	items := make([]EtiquetaItem, 0, len(c.Articulos))
	for _, l := range c.Articulos {
		it := EtiquetaItem{Numero: l.ArticuloNumero, Cantidad: l.Cantidad}
		if l.Articulo != nil {
			it.Descripcion = l.Articulo.Descripcion
			it.CodigoBarras = l.Articulo.CodigoBarras
		}
		if c.EsExterna() && c.KilosProducidos != nil && total > 0 {
			it.Kilos = *c.KilosProducidos * l.Cantidad / total
		}
		items = append(items, it)
	}
	return items
}

func (s *documentoService) GenerarInforme(ctx context.Context, usuarioID uuid.UUID, carroID uint, destinatario string) (*dto.InformeResponse, error) {
	c, err := s.confirmado(ctx, usuarioID, carroID)
	if err != nil {
		return nil, err
	}
	cons, err := s.agregacion.Ingredientes(ctx, usuarioID, carroID)
	if err != nil {
		return nil, err
	}
	if destinatario == "" {
		destinatario = s.destinatario
	}
	job := InformeJob{
		CarroID:      c.ID,
		TipoCarro:    c.TipoCarro,
		Fecha:        time.Now(),
		Ingredientes: cons.Ingredientes,
		Destinatario: destinatario,
	}
	if err := s.cola.EnqueueInforme(ctx, job); err != nil {
		return nil, apierror.Persistence("encolar informe", err)
	}
	log.Info().Uint("carro_id", carroID).Int("filas", len(job.Ingredientes)).Str("destinatario", destinatario).Msg("informe de consolidacion encolado")
	return &dto.InformeResponse{
		CarroID:      carroID,
		Encolado:     true,
		Filas:        len(job.Ingredientes),
		Destinatario: destinatario,
		Mensaje:      "Informe encolado",
	}, nil
}
