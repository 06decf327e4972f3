package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"salespipe/internal/model"
)

// SQLite keeps raw orders in the same three tables the intake forms
// write, so a production database file can be pointed at directly.
type SQLite struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS compra_confra (
	id TEXT PRIMARY KEY,
	nome_comprador TEXT NOT NULL DEFAULT '',
	email_comprador TEXT NOT NULL DEFAULT '',
	whatsapp_comprador TEXT NOT NULL DEFAULT '',
	qtd_confra INTEGER NOT NULL DEFAULT 0,
	qtd_copo INTEGER NOT NULL DEFAULT 0,
	e_crianca TEXT NOT NULL DEFAULT '',
	nomes_participantes TEXT NOT NULL DEFAULT '',
	documentos_participantes TEXT NOT NULL DEFAULT '',
	nomes_copo TEXT NOT NULL DEFAULT '',
	valor_pix INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS compra_camisas (
	id TEXT PRIMARY KEY,
	nome_comprador TEXT NOT NULL DEFAULT '',
	email_comprador TEXT NOT NULL DEFAULT '',
	quantidade INTEGER NOT NULL DEFAULT 0,
	detalhes_pedido TEXT NOT NULL DEFAULT '',
	tamanho TEXT NOT NULL DEFAULT '',
	tipo_camisa TEXT NOT NULL DEFAULT '',
	numero_camisa TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS compra_festa (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL DEFAULT '',
	quantidade INTEGER NOT NULL DEFAULT 0,
	nomes TEXT NOT NULL DEFAULT '',
	documentos TEXT NOT NULL DEFAULT '',
	lote TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT ''
);`

func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) ensureSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite schema: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) PutTicketOrder(ctx context.Context, o model.TicketOrder) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO compra_confra
		(id, nome_comprador, email_comprador, whatsapp_comprador, qtd_confra, qtd_copo,
		 e_crianca, nomes_participantes, documentos_participantes, nomes_copo, valor_pix, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.BuyerName, o.BuyerEmail, o.Whatsapp, o.TicketQty, o.CupQty,
		o.ChildFlags, o.ParticipantNames, o.ParticipantDocs, o.CupNames, o.AmountCents,
		o.SubmittedAt.String())
	if err != nil {
		return fmt.Errorf("put ticket order %s: %w", o.ID, err)
	}
	return nil
}

func (s *SQLite) PutMerchOrder(ctx context.Context, o model.MerchOrder) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO compra_camisas
		(id, nome_comprador, email_comprador, quantidade, detalhes_pedido, tamanho, tipo_camisa, numero_camisa, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.BuyerName, o.BuyerEmail, o.Quantity, o.Details, o.Sizes, o.Categories, o.Numbers,
		o.SubmittedAt.String())
	if err != nil {
		return fmt.Errorf("put merch order %s: %w", o.ID, err)
	}
	return nil
}

func (s *SQLite) PutPartyOrder(ctx context.Context, o model.PartyOrder) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO compra_festa
		(id, email, quantidade, nomes, documentos, lote, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.BuyerEmail, o.Quantity, o.Names, o.Documents, o.Lot,
		o.SubmittedAt.String())
	if err != nil {
		return fmt.Errorf("put party order %s: %w", o.ID, err)
	}
	return nil
}

func (s *SQLite) TicketOrders(ctx context.Context) ([]model.TicketOrder, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, nome_comprador, email_comprador, whatsapp_comprador,
		qtd_confra, qtd_copo, e_crianca, nomes_participantes, documentos_participantes, nomes_copo,
		valor_pix, created_at FROM compra_confra ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list ticket orders: %w", err)
	}
	defer rows.Close()
	var out []model.TicketOrder
	for rows.Next() {
		var o model.TicketOrder
		var created string
		if err := rows.Scan(&o.ID, &o.BuyerName, &o.BuyerEmail, &o.Whatsapp,
			&o.TicketQty, &o.CupQty, &o.ChildFlags, &o.ParticipantNames, &o.ParticipantDocs,
			&o.CupNames, &o.AmountCents, &created); err != nil {
			return nil, fmt.Errorf("scan ticket order: %w", err)
		}
		if o.SubmittedAt, err = model.ParseTimestamp(created); err != nil {
			return nil, fmt.Errorf("ticket order %s: %w", o.ID, err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortTickets(out)
	return out, nil
}

func (s *SQLite) MerchOrders(ctx context.Context) ([]model.MerchOrder, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, nome_comprador, email_comprador, quantidade,
		detalhes_pedido, tamanho, tipo_camisa, numero_camisa, created_at
		FROM compra_camisas ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list merch orders: %w", err)
	}
	defer rows.Close()
	var out []model.MerchOrder
	for rows.Next() {
		var o model.MerchOrder
		var created string
		if err := rows.Scan(&o.ID, &o.BuyerName, &o.BuyerEmail, &o.Quantity,
			&o.Details, &o.Sizes, &o.Categories, &o.Numbers, &created); err != nil {
			return nil, fmt.Errorf("scan merch order: %w", err)
		}
		if o.SubmittedAt, err = model.ParseTimestamp(created); err != nil {
			return nil, fmt.Errorf("merch order %s: %w", o.ID, err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortMerch(out)
	return out, nil
}

func (s *SQLite) PartyOrders(ctx context.Context) ([]model.PartyOrder, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, email, quantidade, nomes, documentos, lote, created_at
		FROM compra_festa ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list party orders: %w", err)
	}
	defer rows.Close()
	var out []model.PartyOrder
	for rows.Next() {
		var o model.PartyOrder
		var created string
		if err := rows.Scan(&o.ID, &o.BuyerEmail, &o.Quantity, &o.Names, &o.Documents, &o.Lot, &created); err != nil {
			return nil, fmt.Errorf("scan party order: %w", err)
		}
		if o.SubmittedAt, err = model.ParseTimestamp(created); err != nil {
			return nil, fmt.Errorf("party order %s: %w", o.ID, err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortParty(out)
	return out, nil
}
