package risk

import (
	"testing"

	"github.com/matzehuels/utxoscope/pkg/entity"
)

func TestClassify_Rules(t *testing.T) {
	tests := []struct {
		name    string
		records []entity.Record
		want    []entity.RiskLevel
	}{
		{
			name: "dustIsHigh",
			records: []entity.Record{
				{TxID: "a", Address: "addr1", Amount: 0.00000500},
			},
			want: []entity.RiskLevel{entity.RiskHigh},
		},
		{
			name: "smallIsMedium",
			records: []entity.Record{
				{TxID: "a", Address: "addr1", Amount: 0.00005},
			},
			want: []entity.RiskLevel{entity.RiskMedium},
		},
		{
			name: "normalIsLow",
			records: []entity.Record{
				{TxID: "a", Address: "addr1", Amount: 0.5},
			},
			want: []entity.RiskLevel{entity.RiskLow},
		},
		{
			name: "sharedFunderIsMedium",
			records: []entity.Record{
				{TxID: "a", Address: "addr1", Amount: 0.5, FundingAddress: "funder"},
				{TxID: "b", Address: "addr2", Amount: 0.3, FundingAddress: "funder"},
			},
			want: []entity.RiskLevel{entity.RiskMedium, entity.RiskMedium},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.records)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d records, want %d", len(got), len(tt.want))
			}
			for i, w := range tt.want {
				if got[i].Risk != w {
					t.Errorf("record %d: got risk %q, want %q", i, got[i].Risk, w)
				}
			}
		})
	}
}

func TestClassify_AddressReuse(t *testing.T) {
	// More than ReuseThreshold UTXOs on one address escalates to high.
	records := make([]entity.Record, ReuseThreshold+1)
	for i := range records {
		records[i] = entity.Record{TxID: "tx", Vout: i, Address: "reused", Amount: 1.0}
	}
	got := Classify(records)
	for i, r := range got {
		if r.Risk != entity.RiskHigh {
			t.Errorf("record %d: got risk %q, want high", i, r.Risk)
		}
	}
}

func TestClassify_PreservesExplicitLabels(t *testing.T) {
	records := []entity.Record{
		{TxID: "a", Address: "addr1", Amount: 0.00000100, Risk: entity.RiskLow},
	}
	got := Classify(records)
	if got[0].Risk != entity.RiskLow {
		t.Errorf("explicit label overwritten: got %q", got[0].Risk)
	}
}

func TestClassify_DoesNotMutateInput(t *testing.T) {
	records := []entity.Record{
		{TxID: "a", Address: "addr1", Amount: 0.5},
	}
	_ = Classify(records)
	if records[0].Risk != entity.RiskUnknown {
		t.Error("input slice should not be mutated")
	}
}

func TestClassify_Empty(t *testing.T) {
	got := Classify(nil)
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}
