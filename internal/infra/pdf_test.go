package infra

import (
	"os"
	"testing"
	"time"

	"github.com/FranexMT/GestorPlantaAgua/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncarNombre(t *testing.T) {
	assert.Equal(t, "Garrafon 20L", truncarNombre("Garrafon 20L", 22))

	// Cuts by runes: the "ó" must survive intact instead of leaving a
	// mangled byte on the ticket
	cortado := truncarNombre("Garrafón de agua purificada ñ 20 litros", 22)
	r := []rune(cortado)
	require.Len(t, r, 22)
	assert.Equal(t, "Garrafón de agua puri", string(r[:21]))
	assert.Equal(t, '…', r[21])

	// Exactly at the limit nothing is cut
	exacto := "Garrafónñññ"
	assert.Equal(t, exacto, truncarNombre(exacto, len([]rune(exacto))))
}

func TestGenerateTicketPDF(t *testing.T) {
	dir := t.TempDir()
	venta := &model.Venta{
		ID:            uuid.New(),
		Fecha:         "2026-08-28",
		Estado:        model.EstadoPagada,
		Total:         decimal.NewFromFloat(105),
		MontoRecibido: decimal.NewFromFloat(150),
		Cambio:        decimal.NewFromFloat(45),
		CreatedAt:     time.Now(),
		Items: []model.VentaItem{
			{
				Nombre:   "Garrafón de agua purificada ñ 20 litros",
				Cantidad: 3,
				Precio:   decimal.NewFromFloat(35),
				Subtotal: decimal.NewFromFloat(105),
			},
		},
	}

	path, err := GenerateTicketPDF(venta, dir)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
