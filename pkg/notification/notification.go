// Package notification turns a persisted order into one email per supplier.
//
// Lines are grouped into supplier buckets with Group, then Dispatch renders
// and sends each bucket in turn through the restaurant's mail transport. A
// failing supplier is recorded and the remaining suppliers are still tried.
package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/shashiranjanraj/pantry/pkg/apperr"
	"github.com/shashiranjanraj/pantry/pkg/logger"
	"github.com/shashiranjanraj/pantry/pkg/mail"
	"github.com/shashiranjanraj/pantry/pkg/metrics"
)

// Line is one item in a supplier email.
type Line struct {
	ItemName string
	Quantity int
	Unit     string
}

// Bucket is everything one supplier receives.
type Bucket struct {
	SupplierID   string
	SupplierName string
	Email        string
	Note         string
	Lines        []Line
	// Err marks a bucket whose supplier could not be resolved.
	Err error
}

// Envelope carries order-level fields shared by every bucket.
type Envelope struct {
	RestaurantID   string
	RestaurantName string
	OrderID        string
	CreatedAt      time.Time
	Sender         mail.SMTPConfig
}

// Delivery identifies one supplier in a Report.
type Delivery struct {
	SupplierID   string `json:"supplierId"`
	SupplierName string `json:"supplierName,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Report summarises a dispatch.
type Report struct {
	Sent   []Delivery `json:"sent"`
	Failed []Delivery `json:"failed"`
}

// Notifier owns the per-restaurant transport registry.
type Notifier struct {
	transports *mail.Registry
}

func New(transports *mail.Registry) *Notifier {
	return &Notifier{transports: transports}
}

// Transports exposes the registry, e.g. to drop a cached transport after a
// restaurant's settings change.
func (n *Notifier) Transports() *mail.Registry { return n.transports }

// Dispatch sends every bucket sequentially. The returned error aggregates
// per-supplier failures; the Report lists both outcomes.
func (n *Notifier) Dispatch(ctx context.Context, env Envelope, buckets []Bucket) (Report, error) {
	const op = "notification.Dispatch"
	log := logger.WithCtx(ctx)

	report := Report{Sent: []Delivery{}, Failed: []Delivery{}}
	var errs *multierror.Error

	transport, terr := n.transports.Get(env.RestaurantID, env.Sender)

	for _, b := range buckets {
		err := b.Err
		if err == nil {
			err = terr
		}
		if err == nil && b.Email == "" {
			err = apperr.Invalid(op, "supplier %s has no contact email", b.SupplierName)
		}
		if err == nil {
			err = n.send(ctx, transport, env, b)
		}

		d := Delivery{SupplierID: b.SupplierID, SupplierName: b.SupplierName}
		if err != nil {
			d.Error = apperr.Message(err)
			report.Failed = append(report.Failed, d)
			errs = multierror.Append(errs, fmt.Errorf("supplier %s: %w", b.SupplierID, err))
			metrics.SupplierNotifications.WithLabelValues("failed").Inc()
			log.Warn("supplier notification failed",
				"order_id", env.OrderID,
				"supplier_id", b.SupplierID,
				"error", err,
			)
			continue
		}
		report.Sent = append(report.Sent, d)
		metrics.SupplierNotifications.WithLabelValues("sent").Inc()
	}

	return report, errs.ErrorOrNil()
}

func (n *Notifier) send(ctx context.Context, t mail.Transport, env Envelope, b Bucket) error {
	body, err := Render(env, b)
	if err != nil {
		return apperr.Internal("notification.send", err)
	}
	msg := mail.To(b.Email).Subject(Subject(env)).Body(body)
	if err := t.Send(ctx, msg); err != nil {
		return apperr.Transport("notification.send", err)
	}
	return nil
}

// Subject is the subject line of a supplier email.
func Subject(env Envelope) string {
	return "New order from " + env.RestaurantName
}

var orderTmpl = template.Must(template.New("order").Parse(`<h2>New order from {{.Env.RestaurantName}}</h2>
<p>Hello {{.Bucket.SupplierName}},</p>
<p>Please deliver the following items:</p>
<table>
<tr><th align="left">Item</th><th align="right">Quantity</th><th align="left">Unit</th></tr>
{{- range .Bucket.Lines}}
<tr><td>{{.ItemName}}</td><td align="right">{{.Quantity}}</td><td>{{.Unit}}</td></tr>
{{- end}}
</table>
{{- if .Bucket.Note}}
<p><strong>Note:</strong> {{.Bucket.Note}}</p>
{{- end}}
<p>Order {{.Env.OrderID}} placed {{.Env.CreatedAt.Format "2006-01-02 15:04 MST"}}</p>
`))

// Render produces the HTML body for one bucket.
func Render(env Envelope, b Bucket) (string, error) {
	var buf bytes.Buffer
	err := orderTmpl.Execute(&buf, struct {
		Env    Envelope
		Bucket Bucket
	}{env, b})
	return buf.String(), err
}
