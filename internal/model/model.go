// Package model defines the typed records flowing through the pipeline:
// one raw-order shape per dataset, plus the normalized LineItem produced
// by expansion. Raw orders are immutable once read; every multi-value
// field stays packed exactly as the intake form submitted it and is only
// decoded during expansion.
package model

// Dataset identifies one of the three independently submitted order sources.
type Dataset string

const (
	Tickets      Dataset = "tickets"
	Merchandise  Dataset = "merch"
	PartyTickets Dataset = "party"
)

// AllDatasets lists datasets in canonical processing order.
var AllDatasets = []Dataset{Tickets, Merchandise, PartyTickets}

func (d Dataset) Valid() bool {
	switch d {
	case Tickets, Merchandise, PartyTickets:
		return true
	}
	return false
}

// Kind classifies a physical item on a line.
type Kind string

const (
	KindTicket      Kind = "ticket"
	KindCup         Kind = "cup"
	KindShirt       Kind = "shirt"
	KindPartyTicket Kind = "party_ticket"
)

// TicketOrder is one denormalized checkout from the event-ticket form.
// JSON field names mirror the columns the form writes.
type TicketOrder struct {
	ID               string    `json:"id"`
	BuyerName        string    `json:"nome_comprador"`
	BuyerEmail       string    `json:"email_comprador"`
	Whatsapp         string    `json:"whatsapp_comprador"`
	TicketQty        int       `json:"qtd_confra"`
	CupQty           int       `json:"qtd_copo"`
	ChildFlags       string    `json:"e_crianca"`
	ParticipantNames string    `json:"nomes_participantes"`
	ParticipantDocs  string    `json:"documentos_participantes"`
	CupNames         string    `json:"nomes_copo"`
	AmountCents      int64     `json:"valor_pix"`
	SubmittedAt      Timestamp `json:"created_at"`
}

// MerchOrder is one denormalized checkout from the shirt-sale form.
type MerchOrder struct {
	ID          string    `json:"id"`
	BuyerName   string    `json:"nome_comprador"`
	BuyerEmail  string    `json:"email_comprador"`
	Quantity    int       `json:"quantidade"`
	Details     string    `json:"detalhes_pedido"` // "Ana (Jogador), Caio (Torcedor)"
	Sizes       string    `json:"tamanho"`
	Categories  string    `json:"tipo_camisa"`
	Numbers     string    `json:"numero_camisa"`
	SubmittedAt Timestamp `json:"created_at"`
}

// PartyOrder is one denormalized checkout from the party-ticket form.
// This form never collected a buyer name, only an email.
type PartyOrder struct {
	ID          string    `json:"id"`
	BuyerEmail  string    `json:"email"`
	Quantity    int       `json:"quantidade"`
	Names       string    `json:"nomes"`
	Documents   string    `json:"documentos"`
	Lot         string    `json:"lote"`
	SubmittedAt Timestamp `json:"created_at"`
}

// LineItem is one physical unit derived from a raw order. Seq is unique
// within its order (0..n-1); buyer fields are carried raw so aggregation
// can derive the buyer key without re-reading the owning order.
type LineItem struct {
	OrderID    string  `json:"orderId"`
	Dataset    Dataset `json:"dataset"`
	Seq        int     `json:"seq"`
	Kind       Kind    `json:"kind"`
	Category   string  `json:"category"`
	PriceCents int64   `json:"priceCents"`

	Name     string `json:"name,omitempty"`
	Document string `json:"document,omitempty"`
	Size     string `json:"size,omitempty"`
	Number   string `json:"number,omitempty"`
	Child    bool   `json:"child,omitempty"`

	BuyerName   string    `json:"buyerName,omitempty"`
	BuyerEmail  string    `json:"buyerEmail"`
	SubmittedAt Timestamp `json:"submittedAt"`
}
