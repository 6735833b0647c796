package repository

import "errors"

// ErrTransicionConcurrente is returned when a conditional state update
// matched no row because another request moved the cart first.
var ErrTransicionConcurrente = errors.New("el carro cambio de estado durante la operacion")
