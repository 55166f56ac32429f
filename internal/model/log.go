package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// LogEntry is one receipt log, read-only to the parser.
type LogEntry struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// Receipt carries the parts of a transaction receipt the parser consumes.
// Logs keep receipt order; the scan depends on it.
type Receipt struct {
	TxHash common.Hash
	To     common.Address
	From   common.Address
	Logs   []LogEntry
}

// LogEntryFromChain converts a go-ethereum log.
func LogEntryFromChain(log *types.Log) LogEntry {
	topics := make([]common.Hash, len(log.Topics))
	copy(topics, log.Topics)
	return LogEntry{
		Address: log.Address,
		Topics:  topics,
		Data:    log.Data,
	}
}
