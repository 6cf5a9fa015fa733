package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/utxoscope/pkg/entity"
	"github.com/matzehuels/utxoscope/pkg/errors"
)

// ReadRecords decodes a JSON record set from r.
//
// The input must be a JSON object with a "records" array:
//
//	{
//	  "records": [
//	    {"txid": "aaa", "vout": 0, "address": "bc1q...", "amount": 1.5}
//	  ]
//	}
//
// Each record must have "txid", "address", and a non-negative "amount".
// Optional fields:
//   - vout: output index (defaults to 0)
//   - received: RFC 3339 timestamp of the funding transaction
//   - funding_address: the address that funded this output
//   - risk: "low", "medium", or "high"
//   - wallet: freeform wallet label
//   - change: whether this output is change back to the owner
//
// ReadRecords returns an error if:
//   - The JSON is malformed
//   - A record is missing its txid or address
//   - Two records share the same txid:vout reference
//   - An amount is negative or non-finite
//   - A risk label is not one of the known levels
//
// Errors are wrapped with the index of the offending record. The returned
// slice is independent of r; ReadRecords does not close r.
func ReadRecords(r io.Reader) ([]entity.Record, error) {
	var data recordFile
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode records")
	}

	seen := make(map[string]bool, len(data.Records))
	for i, rec := range data.Records {
		if err := validateRecord(rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		ref := rec.Ref()
		if seen[ref] {
			return nil, errors.New(errors.ErrCodeInvalidRecords, "record %d: duplicate reference %s", i, ref)
		}
		seen[ref] = true
	}

	return data.Records, nil
}

// ImportRecords reads a JSON record file at path.
//
// ImportRecords opens the file, decodes it using [ReadRecords], and closes
// the file. Errors wrap the underlying cause with the file path for context.
func ImportRecords(path string) ([]entity.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRecords(f)
}

func validateRecord(rec entity.Record) error {
	if rec.TxID == "" {
		return errors.New(errors.ErrCodeInvalidRecords, "missing txid")
	}
	if rec.Address == "" {
		return errors.New(errors.ErrCodeInvalidRecords, "missing address")
	}
	if rec.Vout < 0 {
		return errors.New(errors.ErrCodeInvalidRecords, "negative vout %d", rec.Vout)
	}
	if err := errors.ValidateAmount(rec.Amount); err != nil {
		return err
	}
	if !entity.ValidRisk(rec.Risk) {
		return errors.New(errors.ErrCodeInvalidRecords, "unknown risk level %q", rec.Risk)
	}
	return nil
}
