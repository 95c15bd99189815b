package cmd

import (
	"billgen/pkg/models"
)

// Wire shapes for command input and output. Submissions carry only the
// record-specific fields; everything project-level is resolved by name.
// Outputs mirror the stored row, config-derived fields included.

type invoiceInput struct {
	ID           string             `json:"id,omitempty"`
	Project      string             `json:"project"`
	Number       string             `json:"number"`
	Date         string             `json:"date"`
	DueDate      string             `json:"due_date"`
	Subtotal     string             `json:"subtotal,omitempty"`
	ExchangeRate string             `json:"exchange_rate,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	Items        []invoiceItemInput `json:"items"`
}

type invoiceItemInput struct {
	Service  string `json:"service"`
	Period   string `json:"period"`
	Quantity string `json:"quantity"`
	Rate     string `json:"rate"`
	Amount   string `json:"amount"`
}

func (in *invoiceInput) toModel() *models.Invoice {
	inv := &models.Invoice{
		ID:           in.ID,
		Project:      in.Project,
		Number:       in.Number,
		Date:         in.Date,
		DueDate:      in.DueDate,
		Subtotal:     in.Subtotal,
		ExchangeRate: in.ExchangeRate,
		Notes:        in.Notes,
	}
	for _, item := range in.Items {
		inv.Items = append(inv.Items, models.LineItem{
			"", item.Service, item.Period, item.Quantity, item.Rate, item.Amount,
		})
	}
	return inv
}

type invoiceOutput struct {
	ID           string     `json:"id"`
	Project      string     `json:"project"`
	Number       string     `json:"number"`
	Date         string     `json:"date"`
	DueDate      string     `json:"due_date,omitempty"`
	ClientName   string     `json:"client_name,omitempty"`
	Currency     string     `json:"currency,omitempty"`
	Subtotal     string     `json:"subtotal,omitempty"`
	TaxRate      string     `json:"tax_rate,omitempty"`
	TaxAmount    string     `json:"tax_amount,omitempty"`
	Total        string     `json:"total,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	DocumentLink string     `json:"document_link,omitempty"`
	PDFLink      string     `json:"pdf_link,omitempty"`
	Items        [][]string `json:"items"`
}

func toInvoiceOutput(inv *models.Invoice) invoiceOutput {
	return invoiceOutput{
		ID:           inv.ID,
		Project:      inv.Project,
		Number:       inv.Number,
		Date:         inv.Date,
		DueDate:      inv.DueDate,
		ClientName:   inv.ClientName,
		Currency:     inv.Currency,
		Subtotal:     inv.Subtotal,
		TaxRate:      inv.TaxRate,
		TaxAmount:    inv.TaxAmount,
		Total:        inv.Total,
		Notes:        inv.Notes,
		DocumentLink: inv.DocumentLink,
		PDFLink:      inv.PDFLink,
		Items:        itemsToRows(inv.Items),
	}
}

type creditNoteInput struct {
	ID           string                `json:"id,omitempty"`
	Project      string                `json:"project"`
	Number       string                `json:"number"`
	Date         string                `json:"date"`
	Reason       string                `json:"reason,omitempty"`
	Subtotal     string                `json:"subtotal,omitempty"`
	ExchangeRate string                `json:"exchange_rate,omitempty"`
	Notes        string                `json:"notes,omitempty"`
	Items        []creditNoteItemInput `json:"items"`
}

type creditNoteItemInput struct {
	Description string `json:"description"`
	Period      string `json:"period"`
	Amount      string `json:"amount"`
}

func (in *creditNoteInput) toModel() *models.CreditNote {
	cn := &models.CreditNote{
		ID:           in.ID,
		Project:      in.Project,
		Number:       in.Number,
		Date:         in.Date,
		Reason:       in.Reason,
		Subtotal:     in.Subtotal,
		ExchangeRate: in.ExchangeRate,
		Notes:        in.Notes,
	}
	for _, item := range in.Items {
		cn.Items = append(cn.Items, models.LineItem{
			"", item.Description, item.Period, item.Amount,
		})
	}
	return cn
}

type creditNoteOutput struct {
	ID           string     `json:"id"`
	Project      string     `json:"project"`
	Number       string     `json:"number"`
	Date         string     `json:"date"`
	Reason       string     `json:"reason,omitempty"`
	ClientName   string     `json:"client_name,omitempty"`
	Currency     string     `json:"currency,omitempty"`
	Subtotal     string     `json:"subtotal,omitempty"`
	TaxRate      string     `json:"tax_rate,omitempty"`
	TaxAmount    string     `json:"tax_amount,omitempty"`
	Total        string     `json:"total,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	DocumentLink string     `json:"document_link,omitempty"`
	PDFLink      string     `json:"pdf_link,omitempty"`
	Items        [][]string `json:"items"`
}

func toCreditNoteOutput(cn *models.CreditNote) creditNoteOutput {
	return creditNoteOutput{
		ID:           cn.ID,
		Project:      cn.Project,
		Number:       cn.Number,
		Date:         cn.Date,
		Reason:       cn.Reason,
		ClientName:   cn.ClientName,
		Currency:     cn.Currency,
		Subtotal:     cn.Subtotal,
		TaxRate:      cn.TaxRate,
		TaxAmount:    cn.TaxAmount,
		Total:        cn.Total,
		Notes:        cn.Notes,
		DocumentLink: cn.DocumentLink,
		PDFLink:      cn.PDFLink,
		Items:        itemsToRows(cn.Items),
	}
}

type contractInput struct {
	ID      string              `json:"id,omitempty"`
	Project string              `json:"project"`
	Number  string              `json:"number"`
	Date    string              `json:"date"`
	Start   string              `json:"start"`
	End     string              `json:"end"`
	Fee     string              `json:"fee,omitempty"`
	Items   []contractItemInput `json:"items,omitempty"`
}

type contractItemInput struct {
	Description string `json:"description"`
	Period      string `json:"period"`
	Amount      string `json:"amount"`
}

func (in *contractInput) toModel() *models.Contract {
	c := &models.Contract{
		ID:      in.ID,
		Project: in.Project,
		Number:  in.Number,
		Date:    in.Date,
		Start:   in.Start,
		End:     in.End,
		Fee:     in.Fee,
	}
	for _, item := range in.Items {
		c.Items = append(c.Items, models.LineItem{
			"", item.Description, item.Period, item.Amount,
		})
	}
	return c
}

type contractOutput struct {
	ID           string     `json:"id"`
	Project      string     `json:"project"`
	Number       string     `json:"number"`
	Date         string     `json:"date"`
	Start        string     `json:"start,omitempty"`
	End          string     `json:"end,omitempty"`
	Fee          string     `json:"fee,omitempty"`
	ClientName   string     `json:"client_name,omitempty"`
	Currency     string     `json:"currency,omitempty"`
	DocumentLink string     `json:"document_link,omitempty"`
	PDFLink      string     `json:"pdf_link,omitempty"`
	Items        [][]string `json:"items"`
}

func toContractOutput(c *models.Contract) contractOutput {
	return contractOutput{
		ID:           c.ID,
		Project:      c.Project,
		Number:       c.Number,
		Date:         c.Date,
		Start:        c.Start,
		End:          c.End,
		Fee:          c.Fee,
		ClientName:   c.ClientName,
		Currency:     c.Currency,
		DocumentLink: c.DocumentLink,
		PDFLink:      c.PDFLink,
		Items:        itemsToRows(c.Items),
	}
}

func itemsToRows(items []models.LineItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, item.Clone())
	}
	return rows
}
