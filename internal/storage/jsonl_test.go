package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"salescope/internal/model"
	"salescope/internal/registry"
)

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "sales.jsonl")
	sink := NewJsonlStorage(path)

	first := &model.Summary{
		MarketName:      "OpenSea",
		TotalPrice:      1.5,
		Quantity:        1,
		TransactionHash: "0x01",
		Currency:        model.TrackCurrency(registry.Currency{Symbol: "ETH", Decimals: 18}),
	}
	second := &model.Summary{
		MarketName:      "LooksRare",
		TotalPrice:      2.0,
		Quantity:        2,
		TransactionHash: "0x02",
		Currency:        model.TrackCurrency(registry.Currency{Symbol: "WETH", Decimals: 18}),
	}

	if err := sink.PutSales(context.Background(), []*model.Summary{first}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := sink.PutSales(context.Background(), []*model.Summary{second}); err != nil {
		t.Fatalf("put: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("parse line: %v", err)
		}
		lines = append(lines, record)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan output: %v", err)
	}

	if len(lines) != 2 {
		t.Fatalf("line count mismatch: %d", len(lines))
	}
	if lines[0]["market"] != "OpenSea" || lines[1]["market"] != "LooksRare" {
		t.Fatalf("markets mismatch: %v", lines)
	}
	if lines[1]["transaction_hash"] != "0x02" {
		t.Fatalf("tx hash mismatch: %v", lines[1])
	}
}

func TestJsonlStorageEmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.jsonl")
	sink := NewJsonlStorage(path)

	if err := sink.PutSales(context.Background(), nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("empty batch must not create the file")
	}
}
