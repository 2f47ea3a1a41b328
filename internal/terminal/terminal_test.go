package terminal

import (
	"errors"
	"testing"

	"github.com/FranexMT/GestorPlantaAgua/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func producto(nombre string, precio float64, stock int) *model.Producto {
	return &model.Producto{
		ID:     uuid.New(),
		Nombre: nombre,
		Precio: decimal.NewFromFloat(precio),
		Stock:  stock,
		Activo: true,
	}
}

func TestAgregar_IncrementaLineaExistente(t *testing.T) {
	term := New()
	p := producto("Garrafon 20L", 35, 10)

	require.NoError(t, term.Agregar(p, 2))
	require.NoError(t, term.Agregar(p, 3))

	lineas := term.Lineas()
	require.Len(t, lineas, 1)
	assert.Equal(t, 5, lineas[0].Cantidad)
	assert.Equal(t, "175", term.Total().String())
}

func TestAgregar_RespetaStockAcumulado(t *testing.T) {
	term := New()
	p := producto("Bolsa de hielo 5kg", 25, 4)

	require.NoError(t, term.Agregar(p, 3))
	// 3 + 2 = 5 > stock 4
	err := term.Agregar(p, 2)
	assert.True(t, errors.Is(err, ErrStockInsuficiente))
	assert.Equal(t, 3, term.Lineas()[0].Cantidad)
}

func TestAgregar_CantidadInvalida(t *testing.T) {
	term := New()
	p := producto("Garrafon 20L", 35, 10)
	assert.True(t, errors.Is(term.Agregar(p, 0), ErrCantidadInvalida))
	assert.True(t, errors.Is(term.Agregar(p, -1), ErrCantidadInvalida))
}

func TestSetCantidad(t *testing.T) {
	term := New()
	p := producto("Garrafon 20L", 35, 10)
	require.NoError(t, term.Agregar(p, 2))

	require.NoError(t, term.SetCantidad(p.ID, 7))
	assert.Equal(t, 7, term.Lineas()[0].Cantidad)

	// Above stock
	err := term.SetCantidad(p.ID, 11)
	assert.True(t, errors.Is(err, ErrStockInsuficiente))

	// Zero (or negative) removes the line
	require.NoError(t, term.SetCantidad(p.ID, 0))
	assert.True(t, term.Vacia())

	require.NoError(t, term.Agregar(p, 1))
	require.NoError(t, term.SetCantidad(p.ID, -2))
	assert.True(t, term.Vacia())
}

func TestSetCantidad_LineaInexistente(t *testing.T) {
	term := New()
	err := term.SetCantidad(uuid.New(), 1)
	assert.True(t, errors.Is(err, ErrLineaNoEncontrada))
}

func TestTotalYCambio(t *testing.T) {
	term := New()
	require.NoError(t, term.Agregar(producto("Garrafon 20L", 35, 10), 2))
	require.NoError(t, term.Agregar(producto("Bolsa de hielo 5kg", 25.50, 10), 1))

	assert.Equal(t, "95.5", term.Total().String())

	term.SetMontoRecibido(decimal.NewFromFloat(100))
	assert.True(t, term.PagoSuficiente())
	assert.Equal(t, "4.5", term.Cambio().String())

	// Below total: the shortfall shows as negative change
	term.SetMontoRecibido(decimal.NewFromFloat(50))
	assert.False(t, term.PagoSuficiente())
	assert.Equal(t, "-45.5", term.Cambio().String())
}

func TestItemsYVaciar(t *testing.T) {
	term := New()
	p := producto("Garrafon 20L", 35, 10)
	require.NoError(t, term.Agregar(p, 4))
	term.SetMontoRecibido(decimal.NewFromFloat(200))

	items := term.Items()
	require.Len(t, items, 1)
	assert.Equal(t, p.ID.String(), items[0].ProductoID)
	assert.Equal(t, 4, items[0].Cantidad)

	term.Vaciar()
	assert.True(t, term.Vacia())
	assert.True(t, term.MontoRecibido().IsZero())
}

func TestQuitar_MantieneOrden(t *testing.T) {
	term := New()
	a := producto("Garrafon 20L", 35, 10)
	b := producto("Botellon 10L", 20, 10)
	c := producto("Bolsa de hielo 5kg", 25, 10)
	require.NoError(t, term.Agregar(a, 1))
	require.NoError(t, term.Agregar(b, 1))
	require.NoError(t, term.Agregar(c, 1))

	term.Quitar(b.ID)

	lineas := term.Lineas()
	require.Len(t, lineas, 2)
	assert.Equal(t, a.ID, lineas[0].ProductoID)
	assert.Equal(t, c.ID, lineas[1].ProductoID)
}
