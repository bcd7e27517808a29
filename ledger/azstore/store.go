// Package azstore is a durable, Azure Blob Storage-backed ledger.View,
// for deployments where a ledger must survive process restarts. Each
// ledger is one blob: transactions are newline-delimited JSON
// payload/extraData pairs in SeqNo order, and the whole blob is re-uploaded
// on every Append.
package azstore

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobClient is the subset of *azblob.Client this package depends on. It
// exists so tests can substitute an in-memory double without standing up a
// real storage account, mirroring the store-interface split the teacher
// uses to keep its massif readers independent of any one SDK client shape.
type BlobClient interface {
	DownloadBuffer(ctx context.Context, containerName, blobName string, buf []byte, opts *azblob.DownloadBufferOptions) (int64, error)
	UploadBuffer(ctx context.Context, containerName, blobName string, buffer []byte, opts *azblob.UploadBufferOptions) (azblob.UploadBufferResponse, error)
}

// blobPath names the single blob holding one ledger's committed log.
func blobPath(ledgerID uint32) string {
	return fmt.Sprintf("ledgers/%d/log.ndjson", ledgerID)
}

// record is the on-blob representation of one committed transaction.
type record struct {
	Payload   json.RawMessage `json:"payload"`
	ExtraData json.RawMessage `json:"extraData,omitempty"`
}

func encodeLog(payload [][]byte, extra []json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range payload {
		rec := record{Payload: payload[i], ExtraData: extra[i]}
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("azstore: encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

func decodeLog(data []byte) (payload [][]byte, extra []json.RawMessage, err error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, nil, fmt.Errorf("azstore: decode record: %w", err)
		}
		payload = append(payload, append([]byte(nil), rec.Payload...))
		extra = append(extra, rec.ExtraData)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("azstore: scan log: %w", err)
	}
	return payload, extra, nil
}
