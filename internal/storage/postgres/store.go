package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"salescope/internal/model"
)

// Store provides Postgres persistence for sale summaries.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutSales inserts or updates sale summaries keyed by transaction hash.
func (s *Store) PutSales(ctx context.Context, sales []*model.Summary) error {
	if len(sales) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, sale := range sales {
		tokenID := ""
		if sale.TokenID != nil {
			tokenID = sale.TokenID.String()
		}
		batch.Queue(`
			INSERT INTO nft_sales (
				tx_hash, market, market_address, is_swap, is_sweep,
				currency_symbol, currency_decimals, token_contract, token_id,
				token_type, token_name, quantity, total_price, usd_price,
				markets, prices, tx_from, tx_to, sweeper, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, now(), now())
			ON CONFLICT (tx_hash)
			DO UPDATE SET
				market = EXCLUDED.market,
				market_address = EXCLUDED.market_address,
				is_swap = EXCLUDED.is_swap,
				is_sweep = EXCLUDED.is_sweep,
				currency_symbol = EXCLUDED.currency_symbol,
				currency_decimals = EXCLUDED.currency_decimals,
				token_contract = EXCLUDED.token_contract,
				token_id = EXCLUDED.token_id,
				token_type = EXCLUDED.token_type,
				token_name = EXCLUDED.token_name,
				quantity = EXCLUDED.quantity,
				total_price = EXCLUDED.total_price,
				usd_price = EXCLUDED.usd_price,
				markets = EXCLUDED.markets,
				prices = EXCLUDED.prices,
				tx_from = EXCLUDED.tx_from,
				tx_to = EXCLUDED.tx_to,
				sweeper = EXCLUDED.sweeper,
				updated_at = now()
		`,
			sale.TransactionHash,
			sale.MarketName,
			sale.MarketAddress.Hex(),
			sale.IsSwap,
			sale.IsSweep,
			sale.Currency.Symbol,
			int16(sale.Currency.Decimals),
			sale.TokenContract.Hex(),
			tokenID,
			string(sale.TokenType),
			sale.TokenName,
			int64(sale.Quantity),
			sale.TotalPrice,
			sale.USDPrice,
			sale.MarketList,
			sale.Prices,
			sale.From.Hex(),
			sale.To.Hex(),
			sale.Sweeper,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range sales {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadCheckpoint returns the last processed block for a named backfill.
func (s *Store) LoadCheckpoint(ctx context.Context, name string) (uint64, bool, error) {
	var last int64
	err := s.pool.QueryRow(ctx,
		`SELECT last_block FROM backfill_checkpoints WHERE name = $1`, name,
	).Scan(&last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(last), true, nil
}

// SaveCheckpoint upserts the last processed block for a named backfill.
func (s *Store) SaveCheckpoint(ctx context.Context, name string, lastBlock uint64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO backfill_checkpoints (name, last_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name)
		DO UPDATE SET last_block = EXCLUDED.last_block, updated_at = now()
	`, name, int64(lastBlock))
	return err
}
