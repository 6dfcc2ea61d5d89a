package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kyri56xcaesar/teamops/internal/utils"
)

// Postgres stores every collection in a single JSONB-backed documents table.
// The batch operations run in one transaction, which is the only atomic
// multi-document primitive this backend offers.
type Postgres struct {
	pool *pgxpool.Pool
}

const initSQL = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	doc        JSONB NOT NULL,
	PRIMARY KEY (collection, id)
)`

func OpenPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("could not connect to the database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping the db: %w", err)
	}

	if _, err := pool.Exec(ctx, initSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to execute init sql: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) GetCollection(ctx context.Context, collection string) ([]Record, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, doc FROM documents WHERE collection = $1`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		fields := map[string]any{}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("unmarshal doc %s/%s: %w", collection, id, err)
		}
		out = append(out, Record{ID: id, Fields: fields})
	}
	return out, rows.Err()
}

func (p *Postgres) SetDocument(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal doc %s/%s: %w", collection, id, err)
	}

	_, err = p.pool.Exec(ctx, `
        INSERT INTO documents (collection, id, doc)
        VALUES ($1, $2, $3)
        ON CONFLICT (collection, id) DO UPDATE SET doc = EXCLUDED.doc
    `, collection, id, raw)
	return err
}

func (p *Postgres) UpdateDocument(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal doc %s/%s: %w", collection, id, err)
	}

	ct, err := p.pool.Exec(ctx, `
        UPDATE documents SET doc = doc || $3::jsonb
        WHERE collection = $1 AND id = $2
    `, collection, id, raw)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

func (p *Postgres) DeleteDocument(ctx context.Context, collection, id string) error {
	_, err := p.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	return err
}

func (p *Postgres) BatchWrite(ctx context.Context, collection string, records []Record) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("batch write to %s: record without id", collection)
		}
		raw, err := json.Marshal(r.Fields)
		if err != nil {
			return fmt.Errorf("marshal doc %s/%s: %w", collection, r.ID, err)
		}
		batch.Queue(`
            INSERT INTO documents (collection, id, doc)
            VALUES ($1, $2, $3)
            ON CONFLICT (collection, id) DO UPDATE SET doc = EXCLUDED.doc
        `, collection, r.ID, raw)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (p *Postgres) BatchDelete(ctx context.Context, collection string, ids []string) error {
	_, err := p.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = ANY($2)`, collection, ids)
	return err
}

func (p *Postgres) DeleteByQuery(ctx context.Context, collection, field string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal query value: %w", err)
	}

	_, err = p.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND doc->$2 = $3::jsonb`,
		collection, field, raw)
	return err
}

func (p *Postgres) AddDocument(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id, err := utils.GenerateRandomString(assignedIDLength)
	if err != nil {
		return "", err
	}
	return id, p.SetDocument(ctx, collection, id, fields)
}
