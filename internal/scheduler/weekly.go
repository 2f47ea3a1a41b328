// Package scheduler fires the weekly offer email. It computes the next
// occurrence of the configured weekday and hour, sleeps until then, and from
// that point on ticks every seven days.
package scheduler

import (
	"context"
	"time"

	"github.com/FranexMT/GestorPlantaAgua/internal/infra"
	"github.com/FranexMT/GestorPlantaAgua/internal/repository"
	"github.com/FranexMT/GestorPlantaAgua/internal/worker"

	"github.com/rs/zerolog/log"
)

// Weekly sends the offer email once per week through the job queue.
type Weekly struct {
	productoRepo repository.ProductoRepository
	dispatcher   *worker.Dispatcher
	diaSemana    time.Weekday
	hora         int
	now          func() time.Time
	cancel       context.CancelFunc
	done         chan struct{}
}

func NewWeekly(productoRepo repository.ProductoRepository, dispatcher *worker.Dispatcher, diaSemana, hora int) *Weekly {
	return &Weekly{
		productoRepo: productoRepo,
		dispatcher:   dispatcher,
		diaSemana:    time.Weekday(diaSemana),
		hora:         hora,
		now:          time.Now,
	}
}

// proximaEjecucion returns the next occurrence of the target weekday at the
// target hour, strictly after desde. When desde lands exactly on the slot the
// next week is returned, so a restart right at fire time cannot double-send.
func proximaEjecucion(desde time.Time, dia time.Weekday, hora int) time.Time {
	next := time.Date(desde.Year(), desde.Month(), desde.Day(), hora, 0, 0, 0, desde.Location())
	diff := (int(dia) - int(desde.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, diff)
	if !next.After(desde) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// Start launches the scheduler goroutine. Stop (or cancelling ctx) shuts it down.
func (w *Weekly) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)

		primera := proximaEjecucion(w.now(), w.diaSemana, w.hora)
		log.Info().Time("proxima", primera).Msg("scheduler: oferta semanal programada")

		timer := time.NewTimer(time.Until(primera))
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("scheduler: shutting down")
				return
			case <-timer.C:
				w.enviarOferta(ctx)
				timer.Reset(7 * 24 * time.Hour)
			}
		}
	}()
}

// Stop cancels the scheduler and waits for the goroutine to exit.
func (w *Weekly) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

func (w *Weekly) enviarOferta(ctx context.Context) {
	productos, err := w.productoRepo.ListActivos(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduler: no se pudieron listar los productos")
		return
	}
	if len(productos) == 0 {
		log.Warn().Msg("scheduler: sin productos activos, se omite la oferta")
		return
	}

	payload := worker.OfertaSemanalPayload{}
	for _, p := range productos {
		payload.Productos = append(payload.Productos, infra.OfertaProducto{
			Nombre: p.Nombre,
			Precio: p.Precio.StringFixed(2),
		})
	}

	if err := w.dispatcher.EnqueueOfertaSemanal(ctx, payload); err != nil {
		log.Error().Err(err).Msg("scheduler: no se pudo encolar la oferta semanal")
		return
	}
	log.Info().Int("productos", len(payload.Productos)).Msg("scheduler: oferta semanal encolada")
}
