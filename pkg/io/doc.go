// Package io provides JSON import and export for UTXO record sets.
//
// # Overview
//
// This package enables serialization of the record lists the pipeline
// consumes, so that:
//
//   - Wallet exports and external tools can feed the visualizations
//     without any network access
//   - Fetched UTXO sets can be archived and re-rendered later
//   - Records can be hand-edited to attach wallet labels and risk levels
//
// # JSON Format
//
// The format has one required top-level array:
//
//	{
//	  "records": [
//	    {"txid": "aaa", "vout": 0, "address": "bc1q...", "amount": 1.5},
//	    {"txid": "bbb", "vout": 1, "address": "bc1q...", "amount": 0.002,
//	     "received": "2024-03-01T12:00:00Z", "risk": "medium", "change": true}
//	  ]
//	}
//
// Required per record: txid, address, amount (non-negative BTC).
// Optional: vout, received (RFC 3339), funding_address, risk
// (low/medium/high), wallet, change.
//
// # Import
//
// Use [ImportRecords] to read from a file path, or [ReadRecords] to read
// from any io.Reader. Both validate the records: duplicate txid:vout
// references, negative amounts, and unknown risk labels are rejected with
// errors naming the offending record index.
//
// # Export
//
// Use [ExportRecords] to write to a file, or [WriteRecords] to write to any
// io.Writer. All record fields are preserved for full round-trip fidelity.
package io
