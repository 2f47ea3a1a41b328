package worker

// email_worker.go
// Processes notification jobs from QueueEmail: low-stock alerts triggered by
// sales and inventory edits, and the weekly offer fired by the scheduler.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/FranexMT/GestorPlantaAgua/internal/infra"

	"github.com/rs/zerolog/log"
)

// StockBajoPayload is the low-stock alert job envelope.
type StockBajoPayload struct {
	ProductoID string `json:"producto_id"`
	Nombre     string `json:"nombre"`
	Stock      int    `json:"stock"`
	Umbral     int    `json:"umbral"`
}

// OfertaSemanalPayload carries the active product list for the weekly offer.
type OfertaSemanalPayload struct {
	Productos []infra.OfertaProducto `json:"productos"`
}

// EmailWorker sends notification emails via SMTP.
type EmailWorker struct {
	mailer *infra.Mailer
}

func NewEmailWorker(mailer *infra.Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process dispatches a job to the matching handler. A returned error means
// the job should be retried (and eventually dead-lettered).
func (w *EmailWorker) Process(_ context.Context, jobType string, raw json.RawMessage) error {
	switch jobType {
	case JobStockBajo:
		var payload StockBajoPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			log.Error().Err(err).Msg("email_worker: invalid stock_bajo payload")
			return nil // malformed payloads never succeed on retry
		}
		if err := w.mailer.SendStockBajo(payload.Nombre, payload.Stock, payload.Umbral); err != nil {
			return fmt.Errorf("send stock_bajo: %w", err)
		}
		log.Info().Str("producto", payload.Nombre).Int("stock", payload.Stock).
			Msg("email_worker: alerta de stock bajo enviada")
		return nil

	case JobOfertaSemanal:
		var payload OfertaSemanalPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			log.Error().Err(err).Msg("email_worker: invalid oferta_semanal payload")
			return nil
		}
		if err := w.mailer.SendOfertaSemanal(payload.Productos); err != nil {
			return fmt.Errorf("send oferta_semanal: %w", err)
		}
		log.Info().Int("productos", len(payload.Productos)).
			Msg("email_worker: oferta semanal enviada")
		return nil

	default:
		log.Warn().Str("type", jobType).Msg("email_worker: unknown job type")
		return nil
	}
}
