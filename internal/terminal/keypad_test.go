package terminal

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func presionar(k *Keypad, teclas ...string) {
	for _, t := range teclas {
		k.Presionar(t)
	}
}

func TestKeypad_DigitosReemplazanCeroInicial(t *testing.T) {
	k := NewKeypad(ModoMonto)
	assert.Equal(t, "0", k.Buffer())

	presionar(k, "7")
	assert.Equal(t, "7", k.Buffer())

	presionar(k, "5", "0")
	assert.Equal(t, "750", k.Buffer())
}

func TestKeypad_PuntoDecimalSoloEnMonto(t *testing.T) {
	k := NewKeypad(ModoMonto)
	presionar(k, "1", "2", ".", "5")
	assert.Equal(t, "12.5", k.Buffer())

	// Second point is ignored
	presionar(k, ".", "0")
	assert.Equal(t, "12.50", k.Buffer())

	q := NewKeypad(ModoCantidad)
	presionar(q, "3", ".")
	assert.Equal(t, "3", q.Buffer())
}

func TestKeypad_Borrar(t *testing.T) {
	k := NewKeypad(ModoMonto)
	presionar(k, "4", "2", "←")
	assert.Equal(t, "4", k.Buffer())

	// Deleting the last character leaves "0"
	presionar(k, "←")
	assert.Equal(t, "0", k.Buffer())
	presionar(k, "←")
	assert.Equal(t, "0", k.Buffer())
}

func TestKeypad_Limpiar(t *testing.T) {
	k := NewKeypad(ModoMonto)
	presionar(k, "9", "9", "9", "C")
	assert.Equal(t, "0", k.Buffer())
}

func TestKeypad_CantidadConTope(t *testing.T) {
	k := NewKeypad(ModoCantidad)
	presionar(k, "9", "9", "9", "9", "9")
	assert.Equal(t, "99999", k.Buffer())

	// One more digit would exceed the cap — ignored
	presionar(k, "9")
	assert.Equal(t, "99999", k.Buffer())
}

func TestKeypad_PresetsSuman(t *testing.T) {
	// Bill buttons accumulate on the amount
	k := NewKeypad(ModoMonto)
	k.Sumar(decimal.NewFromInt(50))
	k.Sumar(decimal.NewFromInt(20))
	assert.Equal(t, "70", k.Buffer())

	// Quantity buttons accumulate too
	q := NewKeypad(ModoCantidad)
	presionar(q, "3")
	q.Sumar(decimal.NewFromInt(10))
	assert.Equal(t, "13", q.Buffer())
	assert.Equal(t, 13, q.Cantidad())
}

func TestKeypad_ValorConPuntoColgante(t *testing.T) {
	k := NewKeypad(ModoMonto)
	presionar(k, "1", "2", ".")
	assert.Equal(t, "12", k.Valor().String())
}

func TestKeypad_CambioDeModoLimpia(t *testing.T) {
	k := NewKeypad(ModoMonto)
	presionar(k, "8", "8")
	k.SetModo(ModoCantidad)
	assert.Equal(t, "0", k.Buffer())
	assert.Equal(t, ModoCantidad, k.Modo())
}
