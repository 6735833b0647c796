// Package expansion flattens article recipes into primitive ingredient
// requirements. Mixes expand proportionally to their base yield, sub-articles
// expand with the line multiplier, and a path set stops cycles.
//
// The engine only sees a Resolver, so it runs the same against a database
// snapshot or a hand-built Grafo in tests.
package expansion

import "fmt"

const (
	AdvertenciaCiclo              = "ciclo"
	AdvertenciaReferenciaFaltante = "referencia_faltante"
	AdvertenciaMixSinBase         = "mix_sin_base"
)

// Componente is a {ingredient, quantity} pair of a recipe or mix.
type Componente struct {
	IngredienteID uint
	Cantidad      float64
}

// SubArticulo is an article consumed as base stock by another article.
type SubArticulo struct {
	Numero   string
	Cantidad float64
}

// Ingrediente as seen by the engine. BaseKg and Componentes only matter when Mix is true.
type Ingrediente struct {
	ID          uint
	Nombre      string
	Mix         bool
	BaseKg      float64
	Componentes []Componente
}

// Receta of an article.
type Receta struct {
	Ingredientes []Componente
	Articulos    []SubArticulo
}

// Articulo with an optional recipe. A nil Receta is an article without bill of materials.
type Articulo struct {
	Numero string
	Receta *Receta
}

// Resolver looks up catalog nodes. The bool is false when the node does not exist.
type Resolver interface {
	Ingrediente(id uint) (Ingrediente, bool)
	Articulo(numero string) (Articulo, bool)
}

// Advertencia is a non-fatal integrity problem found while expanding.
type Advertencia struct {
	Tipo   string `json:"tipo"`
	Nodo   string `json:"nodo"`
	Origen string `json:"origen,omitempty"`
}

func (a Advertencia) String() string {
	if a.Origen == "" {
		return fmt.Sprintf("%s: %s", a.Tipo, a.Nodo)
	}
	return fmt.Sprintf("%s: %s (desde %s)", a.Tipo, a.Nodo, a.Origen)
}

// Resultado of one or more expansions. Quantities are summed, never rounded.
type Resultado struct {
	// Ingredientes holds primitive requirements keyed by ingredient id.
	Ingredientes map[uint]float64
	// Mixes holds the unexpanded quantity of every mix met at any depth.
	Mixes map[uint]float64
	// Articulos holds sub-articles consumed as base stock.
	Articulos    map[string]float64
	Advertencias []Advertencia
}

func NuevoResultado() *Resultado {
	return &Resultado{
		Ingredientes: make(map[uint]float64),
		Mixes:        make(map[uint]float64),
		Articulos:    make(map[string]float64),
	}
}

// Integro reports whether the expansion resolved every reference.
func (r *Resultado) Integro() bool { return len(r.Advertencias) == 0 }

// Sumar merges o into r.
func (r *Resultado) Sumar(o *Resultado) {
	for id, c := range o.Ingredientes {
		r.Ingredientes[id] += c
	}
	for id, c := range o.Mixes {
		r.Mixes[id] += c
	}
	for n, c := range o.Articulos {
		r.Articulos[n] += c
	}
	r.Advertencias = append(r.Advertencias, o.Advertencias...)
}

// Opciones tweak an expansion.
type Opciones struct {
	// SinSubArticulos records sub-articles in Articulos without descending
	// into their recipes.
	SinSubArticulos bool
}

// Expandir resolves numero with multiplicador into primitive requirements.
// An unknown article yields an empty, integral result.
func Expandir(r Resolver, numero string, multiplicador float64) *Resultado {
	return ExpandirCon(r, numero, multiplicador, Opciones{})
}

func ExpandirCon(r Resolver, numero string, multiplicador float64, op Opciones) *Resultado {
	e := newExpansor(r, op)
	art, ok := r.Articulo(numero)
	if !ok {
		return e.res
	}
	e.articulo(art, multiplicador, "")
	return e.res
}

// DescomponerMix splits cantidad of an ingredient into primitive components.
// A plain ingredient returns itself.
func DescomponerMix(r Resolver, ingredienteID uint, cantidad float64) *Resultado {
	e := newExpansor(r, Opciones{})
	e.ingrediente(ingredienteID, cantidad, "")
	return e.res
}

type clave struct {
	articulo bool
	id       uint
	numero   string
}

func (k clave) String() string {
	if k.articulo {
		return "articulo " + k.numero
	}
	return fmt.Sprintf("ingrediente %d", k.id)
}

type expansor struct {
	r      Resolver
	op     Opciones
	res    *Resultado
	camino map[clave]bool
}

func newExpansor(r Resolver, op Opciones) *expansor {
	return &expansor{r: r, op: op, res: NuevoResultado(), camino: make(map[clave]bool)}
}

func (e *expansor) advertir(tipo string, k clave, origen string) {
	e.res.Advertencias = append(e.res.Advertencias, Advertencia{Tipo: tipo, Nodo: k.String(), Origen: origen})
}

func (e *expansor) articulo(art Articulo, mult float64, origen string) {
	k := clave{articulo: true, numero: art.Numero}
	if e.camino[k] {
		e.advertir(AdvertenciaCiclo, k, origen)
		return
	}
	if art.Receta == nil {
		return
	}
	e.camino[k] = true
	defer delete(e.camino, k)

	for _, c := range art.Receta.Ingredientes {
		e.ingrediente(c.IngredienteID, c.Cantidad*mult, k.String())
	}
	for _, sa := range art.Receta.Articulos {
		sub, ok := e.r.Articulo(sa.Numero)
		if !ok {
			e.advertir(AdvertenciaReferenciaFaltante, clave{articulo: true, numero: sa.Numero}, k.String())
			continue
		}
		cant := sa.Cantidad * mult
		e.res.Articulos[sub.Numero] += cant
		if e.op.SinSubArticulos {
			continue
		}
		e.articulo(sub, cant, k.String())
	}
}

func (e *expansor) ingrediente(id uint, cantidad float64, origen string) {
	k := clave{id: id}
	if e.camino[k] {
		e.advertir(AdvertenciaCiclo, k, origen)
		return
	}
	ing, ok := e.r.Ingrediente(id)
	if !ok {
		e.advertir(AdvertenciaReferenciaFaltante, k, origen)
		return
	}
	if !ing.Mix {
		e.res.Ingredientes[id] += cantidad
		return
	}
	e.res.Mixes[id] += cantidad
	if ing.BaseKg <= 0 {
		e.advertir(AdvertenciaMixSinBase, k, origen)
		e.res.Ingredientes[id] += cantidad
		return
	}

	e.camino[k] = true
	defer delete(e.camino, k)
	for _, c := range ing.Componentes {
		proporcion := c.Cantidad / ing.BaseKg
		e.ingrediente(c.IngredienteID, proporcion*cantidad, k.String())
	}
}
