// Package billing is the plugin for tracking charges and invoices.
package billing

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/coach/pkg/framework"
)

// InvoicePlugin sets up the charge and invoice tables and the invoice
// command.
type InvoicePlugin struct{}

// Invoice is a single issued invoice, stored in the table `invoice`.
type Invoice struct {
	// Row ID in the `client` table of the client paying the invoice.
	Client framework.RowId

	// Row ID in the `trainer` table of the trainer issuing the invoice.
	Trainer framework.RowId

	// An invoice number, in any desired format.
	InvoiceNumber string

	// The due date of the invoice.
	DueDate string

	// The date the invoice was paid.
	DatePaid string

	// How the invoice was paid (cash, payment processor, etc).
	PaidVia string

	// The charges this invoice covers.
	Charges []framework.RowId
}

// Charge is a single issued charge, stored in the table `charge`.
type Charge struct {
	// The date the charge was issued.
	Date framework.Date

	// A description of the charge
	// (e.g. "Personal training session (60 min)").
	Description string

	// The amount charged, in dollars.
	Amount int64
}

func (InvoicePlugin) Build(c *framework.Context) error {
	if err := c.AddTable(framework.NewTableConfig[Charge]("charge")); err != nil {
		return err
	}
	if err := c.AddTable(framework.NewTableConfig[Invoice]("invoice")); err != nil {
		return err
	}

	invoiceCmd := &cobra.Command{Use: "invoice", Aliases: []string{"inv"}, Short: "Invoice related commands"}
	totalCmd := &cobra.Command{Use: "total", Short: "Sums the charges of an invoice"}
	totalCmd.Flags().Int64("invoice-id", 0, "The invoice row ID to total")
	_ = totalCmd.MarkFlagRequired("invoice-id")
	invoiceCmd.AddCommand(totalCmd)
	return c.AddCommand(invoiceCmd, processInvoiceCommand)
}

func processInvoiceCommand(c *framework.Context, cmd *cobra.Command, args []string) (framework.CommandResponse, error) {
	if cmd.Name() != "total" {
		return framework.CommandResponse{}, fmt.Errorf("%w: subcommand not recognized", framework.ErrUnknownCommand)
	}
	db, err := c.Connection()
	if err != nil {
		return framework.CommandResponse{}, err
	}
	invoiceID, _ := cmd.Flags().GetInt64("invoice-id")

	invoice, err := framework.FromTableRow[Invoice](db, "invoice", framework.RowId(invoiceID))
	if err != nil {
		return framework.CommandResponse{}, err
	}

	var total int64
	for _, chargeID := range invoice.Charges {
		charge, err := framework.FromTableRow[Charge](db, "charge", chargeID)
		if err != nil {
			return framework.CommandResponse{}, err
		}
		total += charge.Amount
	}
	return framework.NewResponse(fmt.Sprintf("Invoice %s totals $%d.00 (%d charges).",
		invoice.InvoiceNumber, total, len(invoice.Charges))), nil
}
