package infra

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/FranexMT/GestorPlantaAgua/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for the notification emails: low-stock
// alerts and the weekly offer. All sends go through the circuit breaker so a
// downed SMTP server does not pile up goroutines retrying forever.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	addr     string
	destino  string
	cb       *CircuitBreaker
}

func NewMailer(cfg *config.Config, cb *CircuitBreaker) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		destino:  cfg.NotificacionesEmail,
		cb:       cb,
	}
}

// SendStockBajo alerts that a product crossed below its stock threshold.
func (m *Mailer) SendStockBajo(nombre string, stock, umbral int) error {
	subject := fmt.Sprintf("⚠️ Stock bajo: %s", nombre)
	body := fmt.Sprintf(
		"El producto %q quedó con %d unidades en stock (umbral: %d).\n\n"+
			"Revisá el inventario para reponerlo.",
		nombre, stock, umbral)
	return m.send(subject, body)
}

// OfertaProducto is one line of the weekly offer email.
type OfertaProducto struct {
	Nombre string `json:"nombre"`
	Precio string `json:"precio"`
}

// SendOfertaSemanal sends the weekly offer with the active product list.
func (m *Mailer) SendOfertaSemanal(productos []OfertaProducto) error {
	var b strings.Builder
	b.WriteString("¡Oferta de la semana!\n\n")
	b.WriteString("Productos disponibles:\n")
	for _, p := range productos {
		fmt.Fprintf(&b, "  - %s: $%s\n", p.Nombre, p.Precio)
	}
	b.WriteString("\nHacé tu pedido antes del fin de semana.")
	return m.send("Oferta semanal de la planta", b.String())
}

func (m *Mailer) send(subject, body string) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{m.destino}
	e.Subject = subject
	e.Text = []byte(body)

	auth := smtp.PlainAuth("", m.user, m.password, m.host)

	send := func() error { return e.Send(m.addr, auth) }
	if m.cb != nil {
		return m.cb.Execute(send)
	}
	return send()
}
