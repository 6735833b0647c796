package service

import (
	"time"

	"planta/internal/dto"
)

// Async job payloads. Workers decode these from the queue envelope.

type EtiquetaItem struct {
	Numero       string  `json:"numero"`
	Descripcion  string  `json:"descripcion"`
	CodigoBarras string  `json:"codigo_barras"`
	Cantidad     float64 `json:"cantidad"`
	Kilos        float64 `json:"kilos,omitempty"`
}

type EtiquetasJob struct {
	CarroID   uint           `json:"carro_id"`
	UsuarioID string         `json:"usuario_id"`
	TipoCarro string         `json:"tipo_carro"`
	Fecha     time.Time      `json:"fecha"`
	Items     []EtiquetaItem `json:"items"`
}

type InformeJob struct {
	CarroID      uint                         `json:"carro_id"`
	TipoCarro    string                       `json:"tipo_carro"`
	Fecha        time.Time                    `json:"fecha"`
	Ingredientes []dto.IngredienteConsolidado `json:"ingredientes"`
	Destinatario string                       `json:"destinatario,omitempty"`
}

type SincronizacionJob struct {
	HojaID string `json:"hoja_id"`
}
