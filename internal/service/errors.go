package service

import "errors"

// Sentinel errors shared across services. Handlers map these to HTTP status
// codes via errors.Is, keeping business rules out of the transport layer.
var (
	ErrProductoNoEncontrado = errors.New("producto no encontrado")
	ErrProductoDuplicado    = errors.New("ya existe un producto con ese nombre")
	ErrProductoInactivo     = errors.New("el producto está inactivo y no puede venderse")

	ErrVentaNoEncontrada = errors.New("venta no encontrada")
	ErrVentaVacia        = errors.New("la venta no tiene productos")
	ErrPagoInsuficiente  = errors.New("el monto recibido es menor al total de la venta")
	// ErrStockNegativo rejects a sale create/edit/delete whose reconciliation
	// would leave any product with negative stock. The terminal has its own
	// cart-time check; this one guards the commit inside the transaction.
	ErrStockNegativo = errors.New("la operación dejaría el stock en negativo")

	ErrUsuarioNoEncontrado = errors.New("usuario no encontrado")
	ErrUsuarioDuplicado    = errors.New("ya existe un usuario con ese nombre")
	ErrCredenciales        = errors.New("usuario o contraseña incorrectos")
)
