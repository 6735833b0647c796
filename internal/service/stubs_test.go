package service_test

import (
	"context"
	"sort"
	"strconv"
	"time"

	"planta/internal/model"
	"planta/internal/repository"
	"planta/internal/service"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── In-memory store shared by every stub repository ──────────────────────────

type memoria struct {
	ingredientes map[uint]*model.Ingrediente
	composicion  []model.MixComposicion
	articulos    map[string]*model.Articulo
	recetas      map[string]*model.Receta
	carros       map[uint]*model.Carro
	movIng       []model.MovimientoIngrediente
	movVentas    []model.MovimientoStockVentas
	stockUsuario map[uuid.UUID]map[uint]float64
	presupuestos map[string]*model.Presupuesto
	nextID       uint
}

func newMemoria() *memoria {
	return &memoria{
		ingredientes: make(map[uint]*model.Ingrediente),
		articulos:    make(map[string]*model.Articulo),
		recetas:      make(map[string]*model.Receta),
		carros:       make(map[uint]*model.Carro),
		stockUsuario: make(map[uuid.UUID]map[uint]float64),
		presupuestos: make(map[string]*model.Presupuesto),
		nextID:       1000,
	}
}

func (m *memoria) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memoria) ingrediente(id uint) (*model.Ingrediente, bool) {
	i, ok := m.ingredientes[id]
	if !ok {
		return nil, false
	}
	cp := *i
	cp.Composicion = nil
	for _, c := range m.composicion {
		if c.MixID == id {
			c.Ingrediente = m.ingredientes[c.IngredienteID]
			cp.Composicion = append(cp.Composicion, c)
		}
	}
	return &cp, true
}

// ── IngredienteRepository ────────────────────────────────────────────────────

type stubIngredienteRepo struct{ m *memoria }

func (r *stubIngredienteRepo) Create(_ context.Context, i *model.Ingrediente) error {
	if i.ID == 0 {
		i.ID = r.m.id()
	}
	cp := *i
	r.m.ingredientes[i.ID] = &cp
	return nil
}

func (r *stubIngredienteRepo) FindByID(_ context.Context, id uint) (*model.Ingrediente, error) {
	i, ok := r.m.ingrediente(id)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return i, nil
}

func (r *stubIngredienteRepo) FindByIDsTx(_ *gorm.DB, ids []uint) ([]model.Ingrediente, error) {
	var out []model.Ingrediente
	for _, id := range ids {
		if i, ok := r.m.ingrediente(id); ok {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (r *stubIngredienteRepo) List(_ context.Context, f repository.IngredienteFilter) ([]model.Ingrediente, error) {
	var out []model.Ingrediente
	for id := range r.m.ingredientes {
		i, _ := r.m.ingrediente(id)
		if f.Categoria != "" && i.Categoria != f.Categoria {
			continue
		}
		out = append(out, *i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Nombre < out[b].Nombre })
	return out, nil
}

func (r *stubIngredienteRepo) Update(_ context.Context, i *model.Ingrediente) error {
	cur, ok := r.m.ingredientes[i.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cur.Nombre, cur.UnidadMedida, cur.Categoria, cur.Descripcion = i.Nombre, i.UnidadMedida, i.Categoria, i.Descripcion
	return nil
}

func (r *stubIngredienteRepo) DeleteTx(_ *gorm.DB, id uint) error {
	if _, ok := r.m.ingredientes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.m.ingredientes, id)
	kept := r.m.composicion[:0]
	for _, c := range r.m.composicion {
		if c.MixID != id {
			kept = append(kept, c)
		}
	}
	r.m.composicion = kept
	for _, i := range r.m.ingredientes {
		if i.PadreID != nil && *i.PadreID == id {
			i.PadreID = nil
		}
	}
	return nil
}

func (r *stubIngredienteRepo) AddComponenteTx(_ *gorm.DB, c *model.MixComposicion) error {
	c.ID = r.m.id()
	r.m.composicion = append(r.m.composicion, *c)
	return nil
}

func (r *stubIngredienteRepo) UpdateComponente(_ context.Context, mixID, ingID uint, cantidad float64) error {
	for i := range r.m.composicion {
		if r.m.composicion[i].MixID == mixID && r.m.composicion[i].IngredienteID == ingID {
			r.m.composicion[i].Cantidad = cantidad
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubIngredienteRepo) DeleteComponenteTx(_ *gorm.DB, mixID, ingID uint) error {
	for i, c := range r.m.composicion {
		if c.MixID == mixID && c.IngredienteID == ingID {
			r.m.composicion = append(r.m.composicion[:i], r.m.composicion[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubIngredienteRepo) DeleteComposicionTx(_ *gorm.DB, mixID uint) error {
	kept := r.m.composicion[:0]
	for _, c := range r.m.composicion {
		if c.MixID != mixID {
			kept = append(kept, c)
		}
	}
	r.m.composicion = kept
	return nil
}

func (r *stubIngredienteRepo) SetPadreTx(_ *gorm.DB, id uint, padreID *uint) error {
	i, ok := r.m.ingredientes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	i.PadreID = padreID
	return nil
}

func (r *stubIngredienteRepo) ClearPadreTx(_ *gorm.DB, padreID uint) error {
	for _, i := range r.m.ingredientes {
		if i.PadreID != nil && *i.PadreID == padreID {
			i.PadreID = nil
		}
	}
	return nil
}

func (r *stubIngredienteRepo) UpdateRecetaBaseTx(_ *gorm.DB, id uint, kg *float64) error {
	i, ok := r.m.ingredientes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	i.RecetaBaseKg = kg
	return nil
}

func (r *stubIngredienteRepo) AddStockTx(_ *gorm.DB, id uint, delta float64) (float64, float64, error) {
	i, ok := r.m.ingredientes[id]
	if !ok {
		return 0, 0, gorm.ErrRecordNotFound
	}
	ant := i.StockActual
	i.StockActual += delta
	return ant, i.StockActual, nil
}

func (r *stubIngredienteRepo) DB() *gorm.DB { return nil }

// ── ArticuloRepository ───────────────────────────────────────────────────────

type stubArticuloRepo struct{ m *memoria }

func (r *stubArticuloRepo) Create(_ context.Context, a *model.Articulo) error {
	cp := *a
	r.m.articulos[a.Numero] = &cp
	return nil
}

func (r *stubArticuloRepo) FindByNumero(_ context.Context, numero string) (*model.Articulo, error) {
	a, ok := r.m.articulos[numero]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *stubArticuloRepo) FindByNumerosTx(_ *gorm.DB, numeros []string) ([]model.Articulo, error) {
	var out []model.Articulo
	for _, n := range numeros {
		if a, ok := r.m.articulos[n]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *stubArticuloRepo) List(_ context.Context) ([]model.Articulo, error) {
	var out []model.Articulo
	for _, a := range r.m.articulos {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Descripcion < out[j].Descripcion })
	return out, nil
}

func (r *stubArticuloRepo) AddStockTx(_ *gorm.DB, numero string, delta float64) (float64, float64, error) {
	a, ok := r.m.articulos[numero]
	if !ok {
		return 0, 0, gorm.ErrRecordNotFound
	}
	ant := a.StockVentas
	a.StockVentas += delta
	return ant, a.StockVentas, nil
}

func (r *stubArticuloRepo) DB() *gorm.DB { return nil }

// ── RecetaRepository ─────────────────────────────────────────────────────────

type stubRecetaRepo struct{ m *memoria }

func (r *stubRecetaRepo) FindByArticulo(_ context.Context, numero string) (*model.Receta, error) {
	rec, ok := r.m.recetas[numero]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *stubRecetaRepo) FindByArticulosTx(_ *gorm.DB, numeros []string) ([]model.Receta, error) {
	var out []model.Receta
	for _, n := range numeros {
		if rec, ok := r.m.recetas[n]; ok {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *stubRecetaRepo) ReplaceTx(_ *gorm.DB, rec *model.Receta) error {
	rec.ID = r.m.id()
	cp := *rec
	r.m.recetas[rec.ArticuloNumero] = &cp
	return nil
}

func (r *stubRecetaRepo) DeleteTx(_ *gorm.DB, numero string) error {
	delete(r.m.recetas, numero)
	return nil
}

func (r *stubRecetaRepo) DB() *gorm.DB { return nil }

// ── CarroRepository ──────────────────────────────────────────────────────────

type stubCarroRepo struct {
	m *memoria
	// alLeer runs after every FindByID, to interleave a concurrent change.
	alLeer func(c *model.Carro)
}

func (r *stubCarroRepo) Create(_ context.Context, c *model.Carro) error {
	c.ID = r.m.id()
	cp := *c
	r.m.carros[c.ID] = &cp
	return nil
}

func (r *stubCarroRepo) FindByID(_ context.Context, id uint) (*model.Carro, error) {
	c, ok := r.m.carros[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	cp.Articulos = make([]model.CarroArticulo, len(c.Articulos))
	copy(cp.Articulos, c.Articulos)
	for i := range cp.Articulos {
		cp.Articulos[i].Articulo = r.m.articulos[cp.Articulos[i].ArticuloNumero]
	}
	cp.Vinculos = append([]model.CarroVinculo(nil), c.Vinculos...)
	if r.alLeer != nil {
		r.alLeer(c)
	}
	return &cp, nil
}

func (r *stubCarroRepo) ListByUsuario(ctx context.Context, usuarioID uuid.UUID) ([]model.Carro, error) {
	var out []model.Carro
	for id, c := range r.m.carros {
		if c.UsuarioID == usuarioID {
			cp, _ := r.FindByID(ctx, id)
			out = append(out, *cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *stubCarroRepo) AddArticulo(_ context.Context, a *model.CarroArticulo) error {
	c, ok := r.m.carros[a.CarroID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.ID = r.m.id()
	c.Articulos = append(c.Articulos, *a)
	return nil
}

func (r *stubCarroRepo) UpdateArticuloCantidad(_ context.Context, carroID uint, numero string, cantidad float64) error {
	c, ok := r.m.carros[carroID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range c.Articulos {
		if c.Articulos[i].ArticuloNumero == numero {
			c.Articulos[i].Cantidad = cantidad
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubCarroRepo) DeleteArticulo(_ context.Context, carroID uint, numero string) error {
	c, ok := r.m.carros[carroID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range c.Articulos {
		if c.Articulos[i].ArticuloNumero == numero {
			c.Articulos = append(c.Articulos[:i], c.Articulos[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubCarroRepo) CountArticulos(_ context.Context, carroID uint) (int64, error) {
	return int64(len(r.m.carros[carroID].Articulos)), nil
}

func (r *stubCarroRepo) UpsertVinculo(_ context.Context, v *model.CarroVinculo) error {
	c := r.m.carros[v.CarroID]
	for i := range c.Vinculos {
		if c.Vinculos[i].ArticuloNumero == v.ArticuloNumero {
			c.Vinculos[i].Cantidad = v.Cantidad
			return nil
		}
	}
	c.Vinculos = append(c.Vinculos, *v)
	return nil
}

func (r *stubCarroRepo) TransitionTx(_ *gorm.DB, id uint, desde, hacia string, campos map[string]any) error {
	c, ok := r.m.carros[id]
	if !ok || c.Estado != desde {
		return repository.ErrTransicionConcurrente
	}
	c.Estado = hacia
	if t, ok := campos["fecha_preparado"].(time.Time); ok {
		c.FechaPreparado = &t
	}
	if t, ok := campos["fecha_confirmacion"].(time.Time); ok {
		c.FechaConfirmacion = &t
	}
	if k, ok := campos["kilos_producidos"].(float64); ok {
		c.KilosProducidos = &k
	}
	return nil
}

func (r *stubCarroRepo) EstadoForUpdateTx(_ *gorm.DB, id uint) (string, error) {
	c, ok := r.m.carros[id]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return c.Estado, nil
}

func (r *stubCarroRepo) DeleteTx(_ *gorm.DB, id uint) error {
	if _, ok := r.m.carros[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.m.carros, id)
	return nil
}

func (r *stubCarroRepo) DB() *gorm.DB { return nil }

// ── MovimientoRepository ─────────────────────────────────────────────────────

type stubMovimientoRepo struct{ m *memoria }

func (r *stubMovimientoRepo) CreateIngredienteTx(_ *gorm.DB, mov *model.MovimientoIngrediente) error {
	mov.CreatedAt = time.Now()
	r.m.movIng = append(r.m.movIng, *mov)
	return nil
}

func (r *stubMovimientoRepo) CreateVentasTx(_ *gorm.DB, mov *model.MovimientoStockVentas) error {
	mov.CreatedAt = time.Now()
	r.m.movVentas = append(r.m.movVentas, *mov)
	return nil
}

func (r *stubMovimientoRepo) FindIngredienteByID(_ context.Context, id uuid.UUID) (*model.MovimientoIngrediente, error) {
	for _, mov := range r.m.movIng {
		if mov.ID == id {
			cp := mov
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubMovimientoRepo) ListIngredienteByCarro(_ context.Context, carroID uint) ([]model.MovimientoIngrediente, error) {
	return r.ListIngredienteByCarroTx(nil, carroID)
}

func (r *stubMovimientoRepo) ListIngredienteByCarroTx(_ *gorm.DB, carroID uint) ([]model.MovimientoIngrediente, error) {
	var out []model.MovimientoIngrediente
	for _, mov := range r.m.movIng {
		if mov.CarroID != nil && *mov.CarroID == carroID {
			out = append(out, mov)
		}
	}
	return out, nil
}

func (r *stubMovimientoRepo) ListIngredienteByGrupoTx(_ *gorm.DB, grupoID uuid.UUID) ([]model.MovimientoIngrediente, error) {
	var out []model.MovimientoIngrediente
	for _, mov := range r.m.movIng {
		if mov.GrupoID != nil && *mov.GrupoID == grupoID {
			out = append(out, mov)
		}
	}
	return out, nil
}

func (r *stubMovimientoRepo) ListVentasByCarroTx(_ *gorm.DB, carroID uint) ([]model.MovimientoStockVentas, error) {
	var out []model.MovimientoStockVentas
	for _, mov := range r.m.movVentas {
		if mov.CarroID != nil && *mov.CarroID == carroID {
			out = append(out, mov)
		}
	}
	return out, nil
}

func (r *stubMovimientoRepo) ListVentasByMovimientosTx(_ *gorm.DB, ids []uuid.UUID) ([]model.MovimientoStockVentas, error) {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	var out []model.MovimientoStockVentas
	for _, mov := range r.m.movVentas {
		if mov.MovimientoIngredienteID != nil && set[*mov.MovimientoIngredienteID] {
			out = append(out, mov)
		}
	}
	return out, nil
}

func (r *stubMovimientoRepo) DeleteIngredienteTx(_ *gorm.DB, ids []uuid.UUID) error {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	kept := r.m.movIng[:0]
	for _, mov := range r.m.movIng {
		if !set[mov.ID] {
			kept = append(kept, mov)
		}
	}
	r.m.movIng = kept
	return nil
}

func (r *stubMovimientoRepo) DeleteVentasTx(_ *gorm.DB, ids []uuid.UUID) error {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	kept := r.m.movVentas[:0]
	for _, mov := range r.m.movVentas {
		if !set[mov.ID] {
			kept = append(kept, mov)
		}
	}
	r.m.movVentas = kept
	return nil
}

func (r *stubMovimientoRepo) CountByCarro(_ context.Context, carroID uint) (int64, int64, error) {
	ing, _ := r.ListIngredienteByCarroTx(nil, carroID)
	ven, _ := r.ListVentasByCarroTx(nil, carroID)
	return int64(len(ing)), int64(len(ven)), nil
}

func (r *stubMovimientoRepo) DB() *gorm.DB { return nil }

// ── StockUsuarioRepository ───────────────────────────────────────────────────

type stubStockUsuarioRepo struct{ m *memoria }

func (r *stubStockUsuarioRepo) AddTx(_ *gorm.DB, usuarioID uuid.UUID, ingID uint, delta float64) (float64, float64, error) {
	filas, ok := r.m.stockUsuario[usuarioID]
	if !ok {
		filas = make(map[uint]float64)
		r.m.stockUsuario[usuarioID] = filas
	}
	ant := filas[ingID]
	filas[ingID] = ant + delta
	return ant, filas[ingID], nil
}

func (r *stubStockUsuarioRepo) ListByUsuario(_ context.Context, usuarioID uuid.UUID) ([]model.StockUsuario, error) {
	var out []model.StockUsuario
	for id, c := range r.m.stockUsuario[usuarioID] {
		out = append(out, model.StockUsuario{UsuarioID: usuarioID, IngredienteID: id, Cantidad: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IngredienteID < out[j].IngredienteID })
	return out, nil
}

// ── PresupuestoRepository ────────────────────────────────────────────────────

type stubPresupuestoRepo struct{ m *memoria }

func (r *stubPresupuestoRepo) UpsertTx(_ *gorm.DB, p *model.Presupuesto) error {
	if cur, ok := r.m.presupuestos[p.IDExterno]; ok {
		p.ID = cur.ID
	} else {
		p.ID = r.m.id()
	}
	cp := *p
	r.m.presupuestos[p.IDExterno] = &cp
	return nil
}

func (r *stubPresupuestoRepo) List(_ context.Context, hojaID string) ([]model.Presupuesto, error) {
	var out []model.Presupuesto
	for _, p := range r.m.presupuestos {
		if hojaID == "" || p.HojaID == hojaID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubPresupuestoRepo) FindByID(_ context.Context, id uint) (*model.Presupuesto, error) {
	for _, p := range r.m.presupuestos {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPresupuestoRepo) DB() *gorm.DB { return nil }

// Ensure the stubs satisfy the interfaces at compile time.
var (
	_ repository.IngredienteRepository  = (*stubIngredienteRepo)(nil)
	_ repository.ArticuloRepository     = (*stubArticuloRepo)(nil)
	_ repository.RecetaRepository       = (*stubRecetaRepo)(nil)
	_ repository.CarroRepository        = (*stubCarroRepo)(nil)
	_ repository.MovimientoRepository   = (*stubMovimientoRepo)(nil)
	_ repository.StockUsuarioRepository = (*stubStockUsuarioRepo)(nil)
	_ repository.PresupuestoRepository  = (*stubPresupuestoRepo)(nil)
)

// ── Collaborator stubs ───────────────────────────────────────────────────────

type stubNotificador struct{ eventos []string }

func (n *stubNotificador) CarroActualizado(_ uint, evento string) {
	n.eventos = append(n.eventos, evento)
}

type stubCandado struct{ tomados map[string]bool }

func (c *stubCandado) Adquirir(_ context.Context, clave string, _ time.Duration) (bool, error) {
	if c.tomados == nil {
		c.tomados = make(map[string]bool)
	}
	if c.tomados[clave] {
		return false, nil
	}
	c.tomados[clave] = true
	return true, nil
}

func (c *stubCandado) Liberar(_ context.Context, clave string) error {
	delete(c.tomados, clave)
	return nil
}

type stubCola struct {
	etiquetas []service.EtiquetasJob
	informes  []service.InformeJob
	hojas     []string
}

func (q *stubCola) EnqueueEtiquetas(_ context.Context, j service.EtiquetasJob) error {
	q.etiquetas = append(q.etiquetas, j)
	return nil
}

func (q *stubCola) EnqueueInforme(_ context.Context, j service.InformeJob) error {
	q.informes = append(q.informes, j)
	return nil
}

func (q *stubCola) EnqueueSincronizacion(_ context.Context, j service.SincronizacionJob) error {
	q.hojas = append(q.hojas, j.HojaID)
	return nil
}

// ── Fixture ──────────────────────────────────────────────────────────────────

const (
	idHarina uint = iota + 1
	idMiel
	idAgua
	idMixMiel
	idA
	idB
	idMixAB
)

func ptr[T any](v T) *T { return &v }

// planta bundles the repos and services over one memoria.
type planta struct {
	m       *memoria
	ing     *stubIngredienteRepo
	art     *stubArticuloRepo
	rec     *stubRecetaRepo
	carros  *stubCarroRepo
	movs    *stubMovimientoRepo
	su      *stubStockUsuarioRepo
	pres    *stubPresupuestoRepo
	notif   *stubNotificador
	candado *stubCandado
	cola    *stubCola
}

// nuevaPlanta seeds Harina, MixMiel (base 10: Miel 8, Agua 2), MixAB
// (base 10: A 3, B 7) and the articles TORTA-A, PAN, BASE and COMBO.
func nuevaPlanta() *planta {
	m := newMemoria()
	p := &planta{
		m:       m,
		ing:     &stubIngredienteRepo{m},
		art:     &stubArticuloRepo{m},
		rec:     &stubRecetaRepo{m},
		carros:  &stubCarroRepo{m: m},
		movs:    &stubMovimientoRepo{m},
		su:      &stubStockUsuarioRepo{m},
		pres:    &stubPresupuestoRepo{m},
		notif:   &stubNotificador{},
		candado: &stubCandado{},
		cola:    &stubCola{},
	}
	ingredientes := []model.Ingrediente{
		{ID: idHarina, Nombre: "Harina", UnidadMedida: "kg", StockActual: 100},
		{ID: idMiel, Nombre: "Miel", UnidadMedida: "kg", StockActual: 50, PadreID: ptr(idMixMiel)},
		{ID: idAgua, Nombre: "Agua", UnidadMedida: "lt", StockActual: 50, PadreID: ptr(idMixMiel)},
		{ID: idMixMiel, Nombre: "MixMiel", UnidadMedida: "kg", RecetaBaseKg: ptr(10.0)},
		{ID: idA, Nombre: "Componente A", UnidadMedida: "kg", StockActual: 20, PadreID: ptr(idMixAB)},
		{ID: idB, Nombre: "Componente B", UnidadMedida: "kg", StockActual: 20, PadreID: ptr(idMixAB)},
		{ID: idMixAB, Nombre: "MixAB", UnidadMedida: "kg", RecetaBaseKg: ptr(10.0)},
	}
	for i := range ingredientes {
		m.ingredientes[ingredientes[i].ID] = &ingredientes[i]
	}
	m.composicion = []model.MixComposicion{
		{ID: 1, MixID: idMixMiel, IngredienteID: idMiel, Cantidad: 8},
		{ID: 2, MixID: idMixMiel, IngredienteID: idAgua, Cantidad: 2},
		{ID: 3, MixID: idMixAB, IngredienteID: idA, Cantidad: 3},
		{ID: 4, MixID: idMixAB, IngredienteID: idB, Cantidad: 7},
	}
	for _, a := range []model.Articulo{
		{Numero: "TORTA-A", Descripcion: "Torta A", CodigoBarras: "7790001", StockVentas: 0},
		{Numero: "PAN", Descripcion: "Pan de miel", CodigoBarras: "7790002", StockVentas: 0},
		{Numero: "BASE", Descripcion: "Base de bizcocho", CodigoBarras: "7790003", StockVentas: 40},
		{Numero: "COMBO", Descripcion: "Combo torta", CodigoBarras: "7790004", StockVentas: 0},
	} {
		cp := a
		m.articulos[a.Numero] = &cp
	}
	m.recetas["TORTA-A"] = &model.Receta{ID: 1, ArticuloNumero: "TORTA-A",
		Ingredientes: []model.RecetaIngrediente{{IngredienteID: idHarina, NombreIngrediente: "Harina", Cantidad: 2}}}
	m.recetas["PAN"] = &model.Receta{ID: 2, ArticuloNumero: "PAN",
		Ingredientes: []model.RecetaIngrediente{{IngredienteID: idMixMiel, NombreIngrediente: "MixMiel", Cantidad: 5}}}
	m.recetas["BASE"] = &model.Receta{ID: 3, ArticuloNumero: "BASE",
		Ingredientes: []model.RecetaIngrediente{{IngredienteID: idHarina, NombreIngrediente: "Harina", Cantidad: 1}}}
	m.recetas["COMBO"] = &model.Receta{ID: 4, ArticuloNumero: "COMBO",
		Ingredientes: []model.RecetaIngrediente{{IngredienteID: idMixMiel, NombreIngrediente: "MixMiel", Cantidad: 1}},
		Articulos:    []model.RecetaArticulo{{ArticuloNumero: "BASE", Cantidad: 2}}}
	return p
}

func (p *planta) ingredientes() service.IngredienteService {
	return service.NewIngredienteService(p.ing, p.art, p.rec)
}

func (p *planta) recetas() service.RecetaService {
	return service.NewRecetaService(p.rec, p.art, p.ing)
}

func (p *planta) carrosSvc() service.CarroService {
	return service.NewCarroService(p.carros, p.movs, p.ing, p.art, p.rec, p.su, p.notif)
}

func (p *planta) agregacion() service.AgregacionService {
	return service.NewAgregacionService(p.carros, p.movs, p.ing, p.art, p.rec, p.su, 0.01)
}

func (p *planta) ajustes() service.AjusteService {
	return service.NewAjusteService(p.carros, p.movs, p.ing, p.art, p.rec, p.su, nil, p.notif)
}

func (p *planta) ciclo() service.CicloService {
	return service.NewCicloService(p.carros, p.movs, p.ing, p.art, p.rec, p.su, p.candado, time.Second, nil, p.notif)
}

func (p *planta) documentos() service.DocumentoService {
	return service.NewDocumentoService(p.carros, p.agregacion(), p.cola, "planta@example.com")
}

// carro seeds a cart for usuario with the given lines.
func (p *planta) carro(usuario uuid.UUID, tipo, estado string, lineas map[string]float64) uint {
	c := &model.Carro{ID: p.m.id(), UsuarioID: usuario, TipoCarro: tipo, Estado: estado, FechaInicio: time.Now()}
	numeros := make([]string, 0, len(lineas))
	for n := range lineas {
		numeros = append(numeros, n)
	}
	sort.Strings(numeros)
	for _, n := range numeros {
		c.Articulos = append(c.Articulos, model.CarroArticulo{ID: p.m.id(), CarroID: c.ID, ArticuloNumero: n, Cantidad: lineas[n]})
	}
	p.m.carros[c.ID] = c
	return c.ID
}

func uitoa(v uint) string { return strconv.FormatUint(uint64(v), 10) }
