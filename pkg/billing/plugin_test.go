package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/coach/pkg/framework"
	"github.com/mesh-intelligence/coach/pkg/training"
)

func newTestContext(t *testing.T) *framework.Context {
	t.Helper()
	c := framework.New()
	c.InMemoryDB(true)
	require.NoError(t, c.AddPlugin(InvoicePlugin{}))
	require.NoError(t, c.AddPlugin(training.TrainingPlugin{}))
	require.NoError(t, c.Startup())
	return c
}

func setupInvoiceData(t *testing.T, db *framework.DB) framework.RowId {
	t.Helper()

	clientID, err := db.NewRow("client")
	require.NoError(t, err)
	require.NoError(t, db.SetField("client", clientID, "name", "Clarissa Client"))

	trainerID, err := db.NewRow("trainer")
	require.NoError(t, err)
	require.NoError(t, framework.ToTableRow(db, "trainer", trainerID, training.Trainer{
		Name:        "Tara Trainer",
		CompanyName: "Tara Fitness",
		Address:     "2127 Xanthia St, Denver, CO 80220",
		Email:       "tara@gmail.com",
		Phone:       "(303) 175-3098",
	}))

	var chargeIDs []framework.RowId
	for _, amount := range []int64{50, 75} {
		chargeID, err := db.NewRow("charge")
		require.NoError(t, err)
		require.NoError(t, framework.ToTableRow(db, "charge", chargeID, Charge{
			Date:        framework.Date{Year: 2025, Month: time.November, Day: 5},
			Description: "Personal training session (60 min)",
			Amount:      amount,
		}))
		chargeIDs = append(chargeIDs, chargeID)
	}

	invoiceID, err := db.NewRow("invoice")
	require.NoError(t, err)
	require.NoError(t, framework.ToTableRow(db, "invoice", invoiceID, Invoice{
		Client:        clientID,
		Trainer:       trainerID,
		InvoiceNumber: "2025-0532",
		DueDate:       "11/06/2025",
		DatePaid:      "11/07/2025",
		PaidVia:       "Cash",
		Charges:       chargeIDs,
	}))
	return invoiceID
}

func TestInvoiceRoundTrip(t *testing.T) {
	c := newTestContext(t)
	db, err := c.Connection()
	require.NoError(t, err)

	invoiceID := setupInvoiceData(t, db)

	invoice, err := framework.FromTableRow[Invoice](db, "invoice", invoiceID)
	require.NoError(t, err)
	assert.Equal(t, "2025-0532", invoice.InvoiceNumber)
	assert.Equal(t, []framework.RowId{1, 2}, invoice.Charges)
}

func TestInvoiceTotalCommand(t *testing.T) {
	c := newTestContext(t)
	db, err := c.Connection()
	require.NoError(t, err)
	invoiceID := setupInvoiceData(t, db)

	resp, err := c.Execute("invoice total --invoice-id=" + invoiceID.String())
	require.NoError(t, err)

	text, ok := resp.Text()
	require.True(t, ok)
	assert.Equal(t, "Invoice 2025-0532 totals $125.00 (2 charges).", text)
}

func TestInvoiceTotalNoCharges(t *testing.T) {
	c := newTestContext(t)
	db, err := c.Connection()
	require.NoError(t, err)

	invoiceID, err := db.NewRow("invoice")
	require.NoError(t, err)
	require.NoError(t, framework.ToTableRow(db, "invoice", invoiceID, Invoice{
		InvoiceNumber: "2025-0533",
	}))

	resp, err := c.Execute("inv total --invoice-id=" + invoiceID.String())
	require.NoError(t, err)
	text, _ := resp.Text()
	assert.Equal(t, "Invoice 2025-0533 totals $0.00 (0 charges).", text)
}

func TestInvoiceTotalMissingInvoice(t *testing.T) {
	c := newTestContext(t)

	_, err := c.Execute("invoice total --invoice-id=42")
	require.Error(t, err)
	assert.ErrorIs(t, err, framework.ErrDatabase)
}

func TestBareInvoiceCommandRejected(t *testing.T) {
	c := newTestContext(t)

	_, err := c.Execute("invoice")
	require.Error(t, err)
	assert.ErrorIs(t, err, framework.ErrUnknownCommand)
}
