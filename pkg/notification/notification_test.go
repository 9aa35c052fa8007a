package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/pantry/pkg/apperr"
	"github.com/shashiranjanraj/pantry/pkg/mail"
)

func TestGroupKeepsFirstAppearanceOrder(t *testing.T) {
	entries := []Entry{
		{SupplierID: "A", SupplierName: "Alpha", Email: "a@x.test", Line: Line{ItemName: "X", Quantity: 3, Unit: "kg"}},
		{SupplierID: "B", SupplierName: "Beta", Email: "b@x.test", Line: Line{ItemName: "Z", Quantity: 2}},
		{SupplierID: "A", SupplierName: "Alpha", Email: "a@x.test", Line: Line{ItemName: "Y", Quantity: 1}},
	}

	buckets := Group(entries, map[string]string{"A": "deliver before 9am"})
	require.Len(t, buckets, 2)

	assert.Equal(t, "A", buckets[0].SupplierID)
	assert.Equal(t, "deliver before 9am", buckets[0].Note)
	assert.Equal(t, []Line{{ItemName: "X", Quantity: 3, Unit: "kg"}, {ItemName: "Y", Quantity: 1}}, buckets[0].Lines)

	assert.Equal(t, "B", buckets[1].SupplierID)
	assert.Empty(t, buckets[1].Note)
	assert.Equal(t, []Line{{ItemName: "Z", Quantity: 2}}, buckets[1].Lines)
}

func TestRenderIncludesLinesAndNote(t *testing.T) {
	env := Envelope{RestaurantName: "Trattoria", OrderID: "o1", CreatedAt: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	body, err := Render(env, Bucket{
		SupplierName: "Alpha",
		Note:         "deliver before 9am",
		Lines:        []Line{{ItemName: "Flour", Quantity: 3, Unit: "kg"}, {ItemName: "Yeast", Quantity: 12}},
	})
	require.NoError(t, err)

	assert.Contains(t, body, "<td>Flour</td><td align=\"right\">3</td><td>kg</td>")
	assert.Contains(t, body, "<td>Yeast</td><td align=\"right\">12</td><td></td>")
	assert.Contains(t, body, "deliver before 9am")

	body, err = Render(env, Bucket{SupplierName: "Beta"})
	require.NoError(t, err)
	assert.NotContains(t, body, "Note:")
}

var sender = mail.SMTPConfig{FromName: "T", FromAddress: "t@x.test", Username: "u", Password: "p"}

func TestDispatchContinuesPastFailures(t *testing.T) {
	rec := &failingFor{fail: "b@x.test"}
	reg := mail.NewRegistry(nil)
	reg.Set("r1", rec)

	report, err := New(reg).Dispatch(context.Background(), Envelope{RestaurantID: "r1", Sender: sender}, []Bucket{
		{SupplierID: "A", Email: "a@x.test"},
		{SupplierID: "B", Email: "b@x.test"},
		{SupplierID: "C", Err: apperr.NotFound("test", "Supplier")},
		{SupplierID: "D", Email: "d@x.test"},
	})

	require.Error(t, err)
	assert.Equal(t, []string{"a@x.test", "b@x.test", "d@x.test"}, rec.attempts)
	assert.Equal(t, []Delivery{{SupplierID: "A"}, {SupplierID: "D"}}, report.Sent)
	require.Len(t, report.Failed, 2)
	assert.Equal(t, "B", report.Failed[0].SupplierID)
	assert.Equal(t, "mail transport failed", report.Failed[0].Error)
	assert.Equal(t, "Supplier not found", report.Failed[1].Error)
}

func TestDispatchIncompleteSenderFailsEveryBucket(t *testing.T) {
	report, err := New(mail.NewRegistry(nil)).Dispatch(context.Background(), Envelope{RestaurantID: "r1"}, []Bucket{
		{SupplierID: "A", Email: "a@x.test"},
		{SupplierID: "B", Email: "b@x.test"},
	})

	require.Error(t, err)
	assert.Empty(t, report.Sent)
	require.Len(t, report.Failed, 2)
	assert.Contains(t, report.Failed[0].Error, "incomplete email configuration")
}

type failingFor struct {
	fail     string
	attempts []string
}

func (f *failingFor) Send(_ context.Context, msg *mail.Message) error {
	to := msg.Recipients()[0]
	f.attempts = append(f.attempts, to)
	if to == f.fail {
		return errors.New("550 mailbox unavailable")
	}
	return nil
}
