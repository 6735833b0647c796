package expansion

// Grafo is an in-memory catalog snapshot implementing Resolver.
type Grafo struct {
	ingredientes map[uint]Ingrediente
	articulos    map[string]Articulo
}

var _ Resolver = (*Grafo)(nil)

func NuevoGrafo() *Grafo {
	return &Grafo{
		ingredientes: make(map[uint]Ingrediente),
		articulos:    make(map[string]Articulo),
	}
}

func (g *Grafo) AgregarIngrediente(i Ingrediente) { g.ingredientes[i.ID] = i }

func (g *Grafo) AgregarArticulo(a Articulo) { g.articulos[a.Numero] = a }

func (g *Grafo) TieneIngrediente(id uint) bool {
	_, ok := g.ingredientes[id]
	return ok
}

func (g *Grafo) TieneArticulo(numero string) bool {
	_, ok := g.articulos[numero]
	return ok
}

func (g *Grafo) Ingrediente(id uint) (Ingrediente, bool) {
	i, ok := g.ingredientes[id]
	return i, ok
}

func (g *Grafo) Articulo(numero string) (Articulo, bool) {
	a, ok := g.articulos[numero]
	return a, ok
}

// ContieneIngrediente reports whether mix transitively reaches objetivo
// through its composition. Used to reject composition writes that would
// create a cycle.
func ContieneIngrediente(r Resolver, mix, objetivo uint) bool {
	visitados := make(map[uint]bool)
	var buscar func(id uint) bool
	buscar = func(id uint) bool {
		if id == objetivo {
			return true
		}
		if visitados[id] {
			return false
		}
		visitados[id] = true
		ing, ok := r.Ingrediente(id)
		if !ok || !ing.Mix {
			return false
		}
		for _, c := range ing.Componentes {
			if buscar(c.IngredienteID) {
				return true
			}
		}
		return false
	}
	return buscar(mix)
}

// AlcanzaArticulo reports whether desde transitively consumes objetivo as a sub-article.
func AlcanzaArticulo(r Resolver, desde, objetivo string) bool {
	visitados := make(map[string]bool)
	var buscar func(numero string) bool
	buscar = func(numero string) bool {
		if numero == objetivo {
			return true
		}
		if visitados[numero] {
			return false
		}
		visitados[numero] = true
		art, ok := r.Articulo(numero)
		if !ok || art.Receta == nil {
			return false
		}
		for _, sa := range art.Receta.Articulos {
			if buscar(sa.Numero) {
				return true
			}
		}
		return false
	}
	return buscar(desde)
}
