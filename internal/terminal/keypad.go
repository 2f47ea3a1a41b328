package terminal

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Modo selects what the keypad is editing.
type Modo int

const (
	ModoMonto    Modo = iota // amount received: decimal, at most one point
	ModoCantidad             // quantity: integer only
)

// maxCantidad caps the quantity buffer so a stuck key cannot overflow a line.
const maxCantidad = 99999

// Keypad is the numeric pad state machine of the sales screen. It edits a
// text buffer like a calculator: digits append, a leading "0" is replaced by
// the next digit, "←" deletes the last character and "C" clears.
type Keypad struct {
	modo   Modo
	buffer string
}

func NewKeypad(modo Modo) *Keypad {
	return &Keypad{modo: modo, buffer: "0"}
}

// SetModo switches between amount and quantity editing, clearing the buffer.
func (k *Keypad) SetModo(modo Modo) {
	k.modo = modo
	k.buffer = "0"
}

func (k *Keypad) Modo() Modo { return k.modo }

// Buffer returns the raw text being edited, as shown on screen.
func (k *Keypad) Buffer() string { return k.buffer }

// Presionar handles one key press: "0".."9", ".", "C" and "←".
// Unknown keys are ignored.
func (k *Keypad) Presionar(tecla string) {
	switch {
	case tecla == "C":
		k.buffer = "0"

	case tecla == "←":
		k.buffer = k.buffer[:len(k.buffer)-1]
		if k.buffer == "" {
			k.buffer = "0"
		}

	case tecla == ".":
		// Decimal point only for amounts, and only one
		if k.modo != ModoMonto || strings.Contains(k.buffer, ".") {
			return
		}
		k.buffer += "."

	case len(tecla) == 1 && tecla[0] >= '0' && tecla[0] <= '9':
		if k.buffer == "0" {
			k.buffer = tecla
			return
		}
		if k.modo == ModoCantidad {
			if n, err := strconv.Atoi(k.buffer + tecla); err != nil || n > maxCantidad {
				return
			}
		}
		k.buffer += tecla
	}
}

// Sumar adds a preset to the current value: the +1/+5/+10 quantity buttons
// and the $20/$50/$100 bill buttons both accumulate on the buffer.
func (k *Keypad) Sumar(valor decimal.Decimal) {
	nuevo := k.Valor().Add(valor)
	if k.modo == ModoCantidad {
		n := nuevo.IntPart()
		if n > maxCantidad {
			n = maxCantidad
		}
		k.buffer = strconv.FormatInt(n, 10)
		return
	}
	k.buffer = nuevo.String()
}

// Valor parses the buffer. A trailing point ("12.") reads as 12.
func (k *Keypad) Valor() decimal.Decimal {
	raw := strings.TrimSuffix(k.buffer, ".")
	if raw == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return v
}

// Cantidad returns the buffer as an integer quantity.
func (k *Keypad) Cantidad() int {
	return int(k.Valor().IntPart())
}
