// Package terminal models the sales screen state: the cart being armed, the
// amount received and the change due. It is pure in-memory logic; persisting
// the sale goes through the venta service.
package terminal

import (
	"errors"
	"fmt"

	"github.com/FranexMT/GestorPlantaAgua/internal/dto"
	"github.com/FranexMT/GestorPlantaAgua/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrStockInsuficiente = errors.New("stock insuficiente")
	ErrLineaNoEncontrada = errors.New("el producto no está en la venta")
	ErrCantidadInvalida  = errors.New("la cantidad debe ser mayor a cero")
)

// Linea is one product row in the cart.
type Linea struct {
	ProductoID uuid.UUID
	Nombre     string
	Precio     decimal.Decimal
	Cantidad   int
	stock      int // snapshot at add time, caps the line quantity
}

func (l Linea) Subtotal() decimal.Decimal {
	return l.Precio.Mul(decimal.NewFromInt(int64(l.Cantidad)))
}

// Terminal accumulates cart lines in insertion order. Adding a product that
// is already in the cart increments its line instead of creating another one,
// and the cumulative quantity can never exceed the product's stock.
type Terminal struct {
	lineas        []Linea
	montoRecibido decimal.Decimal
}

func New() *Terminal {
	return &Terminal{montoRecibido: decimal.Zero}
}

// Agregar adds cantidad units of the product to the cart.
func (t *Terminal) Agregar(p *model.Producto, cantidad int) error {
	if cantidad <= 0 {
		return ErrCantidadInvalida
	}
	for i := range t.lineas {
		if t.lineas[i].ProductoID == p.ID {
			nueva := t.lineas[i].Cantidad + cantidad
			if nueva > t.lineas[i].stock {
				return fmt.Errorf("%w: %s (stock %d)", ErrStockInsuficiente, p.Nombre, t.lineas[i].stock)
			}
			t.lineas[i].Cantidad = nueva
			return nil
		}
	}
	if cantidad > p.Stock {
		return fmt.Errorf("%w: %s (stock %d)", ErrStockInsuficiente, p.Nombre, p.Stock)
	}
	t.lineas = append(t.lineas, Linea{
		ProductoID: p.ID,
		Nombre:     p.Nombre,
		Precio:     p.Precio,
		Cantidad:   cantidad,
		stock:      p.Stock,
	})
	return nil
}

// SetCantidad replaces a line's quantity. Zero or negative removes the line.
func (t *Terminal) SetCantidad(productoID uuid.UUID, cantidad int) error {
	for i := range t.lineas {
		if t.lineas[i].ProductoID == productoID {
			if cantidad <= 0 {
				t.Quitar(productoID)
				return nil
			}
			if cantidad > t.lineas[i].stock {
				return fmt.Errorf("%w: %s (stock %d)", ErrStockInsuficiente, t.lineas[i].Nombre, t.lineas[i].stock)
			}
			t.lineas[i].Cantidad = cantidad
			return nil
		}
	}
	return ErrLineaNoEncontrada
}

// Quitar removes a line from the cart.
func (t *Terminal) Quitar(productoID uuid.UUID) {
	for i := range t.lineas {
		if t.lineas[i].ProductoID == productoID {
			t.lineas = append(t.lineas[:i], t.lineas[i+1:]...)
			return
		}
	}
}

// Lineas returns the cart rows in insertion order.
func (t *Terminal) Lineas() []Linea {
	out := make([]Linea, len(t.lineas))
	copy(out, t.lineas)
	return out
}

func (t *Terminal) Vacia() bool { return len(t.lineas) == 0 }

func (t *Terminal) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range t.lineas {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (t *Terminal) SetMontoRecibido(monto decimal.Decimal) {
	t.montoRecibido = monto
}

func (t *Terminal) MontoRecibido() decimal.Decimal { return t.montoRecibido }

// Cambio returns the change due. While the amount received does not cover the
// total it is negative, so the screen can show how much is still missing.
func (t *Terminal) Cambio() decimal.Decimal {
	return t.montoRecibido.Sub(t.Total())
}

// PagoSuficiente reports whether the amount received covers the total.
func (t *Terminal) PagoSuficiente() bool {
	return t.montoRecibido.GreaterThanOrEqual(t.Total())
}

// Items builds the request payload to register the sale.
func (t *Terminal) Items() []dto.ItemVentaRequest {
	items := make([]dto.ItemVentaRequest, 0, len(t.lineas))
	for _, l := range t.lineas {
		items = append(items, dto.ItemVentaRequest{
			ProductoID: l.ProductoID.String(),
			Cantidad:   l.Cantidad,
		})
	}
	return items
}

// Vaciar resets the cart and the amount received.
func (t *Terminal) Vaciar() {
	t.lineas = nil
	t.montoRecibido = decimal.Zero
}
