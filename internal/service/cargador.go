package service

import (
	"planta/internal/expansion"
	"planta/internal/model"
	"planta/internal/repository"

	"gorm.io/gorm"
)

// catalogo is a consistent snapshot of the catalog slice reachable from a
// set of articles and ingredients, plus the raw rows for display fields.
type catalogo struct {
	grafo        *expansion.Grafo
	ingredientes map[uint]*model.Ingrediente
	articulos    map[string]*model.Articulo
}

func (c *catalogo) nombreIngrediente(id uint) (string, string) {
	if i, ok := c.ingredientes[id]; ok {
		return i.Nombre, i.UnidadMedida
	}
	return "", ""
}

// cargador walks recipes and compositions breadth first and loads every
// reachable node in batches.
type cargador struct {
	ingredientes repository.IngredienteRepository
	articulos    repository.ArticuloRepository
	recetas      repository.RecetaRepository
}

func (l *cargador) cargar(tx *gorm.DB, numeros []string, ids []uint) (*catalogo, error) {
	cat := &catalogo{
		grafo:        expansion.NuevoGrafo(),
		ingredientes: make(map[uint]*model.Ingrediente),
		articulos:    make(map[string]*model.Articulo),
	}
	vistosArt := make(map[string]bool)
	vistosIng := make(map[uint]bool)

	var pendArt []string
	var pendIng []uint
	encolarArt := func(n string) {
		if !vistosArt[n] {
			vistosArt[n] = true
			pendArt = append(pendArt, n)
		}
	}
	encolarIng := func(id uint) {
		if !vistosIng[id] {
			vistosIng[id] = true
			pendIng = append(pendIng, id)
		}
	}
	for _, n := range numeros {
		encolarArt(n)
	}
	for _, id := range ids {
		encolarIng(id)
	}

	for len(pendArt) > 0 || len(pendIng) > 0 {
		lote, loteIng := pendArt, pendIng
		pendArt, pendIng = nil, nil

		if len(lote) > 0 {
			arts, err := l.articulos.FindByNumerosTx(tx, lote)
			if err != nil {
				return nil, err
			}
			recs, err := l.recetas.FindByArticulosTx(tx, lote)
			if err != nil {
				return nil, err
			}
			porNumero := make(map[string]*model.Receta, len(recs))
			for i := range recs {
				porNumero[recs[i].ArticuloNumero] = &recs[i]
			}
			for i := range arts {
				a := &arts[i]
				cat.articulos[a.Numero] = a
				nodo := expansion.Articulo{Numero: a.Numero}
				if r, ok := porNumero[a.Numero]; ok {
					nodo.Receta = &expansion.Receta{}
					for _, ri := range r.Ingredientes {
						nodo.Receta.Ingredientes = append(nodo.Receta.Ingredientes,
							expansion.Componente{IngredienteID: ri.IngredienteID, Cantidad: ri.Cantidad})
						encolarIng(ri.IngredienteID)
					}
					for _, ra := range r.Articulos {
						nodo.Receta.Articulos = append(nodo.Receta.Articulos,
							expansion.SubArticulo{Numero: ra.ArticuloNumero, Cantidad: ra.Cantidad})
						encolarArt(ra.ArticuloNumero)
					}
				}
				cat.grafo.AgregarArticulo(nodo)
			}
		}

		if len(loteIng) > 0 {
			ings, err := l.ingredientes.FindByIDsTx(tx, loteIng)
			if err != nil {
				return nil, err
			}
			for i := range ings {
				ing := &ings[i]
				cat.ingredientes[ing.ID] = ing
				nodo := expansion.Ingrediente{ID: ing.ID, Nombre: ing.Nombre}
				if ing.EsMix() {
					nodo.Mix = true
					nodo.BaseKg = ing.BaseKg()
					for _, c := range ing.Composicion {
						nodo.Componentes = append(nodo.Componentes,
							expansion.Componente{IngredienteID: c.IngredienteID, Cantidad: c.Cantidad})
						encolarIng(c.IngredienteID)
					}
				}
				cat.grafo.AgregarIngrediente(nodo)
			}
		}
	}
	return cat, nil
}

// expandirCarro consolidates every article line of c. External carts do not
// descend into sub-articles: those are taken from sales stock as they are.
func (l *cargador) expandirCarro(tx *gorm.DB, c *model.Carro) (*expansion.Resultado, *catalogo, error) {
	numeros := make([]string, 0, len(c.Articulos))
	for _, a := range c.Articulos {
		numeros = append(numeros, a.ArticuloNumero)
	}
	cat, err := l.cargar(tx, numeros, nil)
	if err != nil {
		return nil, nil, err
	}
	op := expansion.Opciones{SinSubArticulos: c.EsExterna()}
	total := expansion.NuevoResultado()
	for _, a := range c.Articulos {
		total.Sumar(expansion.ExpandirCon(cat.grafo, a.ArticuloNumero, a.Cantidad, op))
	}
	total.Advertencias = advertenciasUnicas(total.Advertencias)
	return total, cat, nil
}
