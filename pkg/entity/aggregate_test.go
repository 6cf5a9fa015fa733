package entity

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func sampleRecords() []Record {
	return []Record{
		{TxID: "aaa111", Vout: 0, Address: "bc1qalice", Amount: 1.5, Received: date("2024-01-05"), Risk: RiskLow, Wallet: "main"},
		{TxID: "aaa111", Vout: 1, Address: "bc1qbob", Amount: 0.5, Received: date("2024-01-05"), Risk: RiskHigh, Change: true},
		{TxID: "bbb222", Vout: 0, Address: "bc1qalice", Amount: 0.25, Received: date("2024-02-10"), Risk: RiskMedium, Wallet: "main"},
	}
}

func TestAggregate(t *testing.T) {
	g, err := Aggregate(sampleRecords(), AggregateOptions{})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	// 2 transactions + 2 addresses.
	if len(g.Nodes) != 4 {
		t.Fatalf("len(Nodes) = %d, want 4", len(g.Nodes))
	}
	if len(g.Links) != 3 {
		t.Fatalf("len(Links) = %d, want 3", len(g.Links))
	}

	tx := g.NodeByID("tx:aaa111")
	if tx == nil {
		t.Fatal("tx:aaa111 missing")
	}
	if tx.Amount != 2.0 {
		t.Errorf("tx amount = %v, want 2.0", tx.Amount)
	}
	if tx.Risk != RiskHigh {
		t.Errorf("tx risk = %v, want high (max of contributing records)", tx.Risk)
	}

	alice := g.NodeByID("addr:bc1qalice")
	if alice == nil {
		t.Fatal("addr:bc1qalice missing")
	}
	if alice.Amount != 1.75 {
		t.Errorf("address amount = %v, want 1.75", alice.Amount)
	}
	if alice.GroupKey != "main" {
		t.Errorf("address group = %q, want main", alice.GroupKey)
	}
}

func TestAggregateEmpty(t *testing.T) {
	g, err := Aggregate(nil, AggregateOptions{})
	if err != nil {
		t.Fatalf("Aggregate(nil) error = %v", err)
	}
	if len(g.Nodes) != 0 || len(g.Links) != 0 {
		t.Errorf("empty input should yield empty graph, got %d nodes %d links", len(g.Nodes), len(g.Links))
	}
}

func TestAggregateNegativeAmount(t *testing.T) {
	_, err := Aggregate([]Record{{TxID: "x", Address: "y", Amount: -1}}, AggregateOptions{})
	if err == nil {
		t.Fatal("negative amount should be rejected")
	}
}

func TestAggregateIncludeUTXOs(t *testing.T) {
	g, err := Aggregate(sampleRecords(), AggregateOptions{IncludeUTXOs: true})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	// 4 entities + 3 utxo nodes.
	if len(g.Nodes) != 7 {
		t.Fatalf("len(Nodes) = %d, want 7", len(g.Nodes))
	}
	if g.NodeByID("utxo:aaa111:1") == nil {
		t.Error("per-output node utxo:aaa111:1 missing")
	}
}

func TestAggregateTruncates(t *testing.T) {
	records := make([]Record, 50)
	for i := range records {
		records[i] = Record{
			TxID:    string(rune('a'+i%26)) + "tx",
			Vout:    i,
			Address: "bc1q" + string(rune('a'+i%26)),
			Amount:  float64(i) * 0.01,
		}
	}
	g, err := Aggregate(records, AggregateOptions{MaxNodes: 10})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(g.Nodes) != 10 {
		t.Errorf("len(Nodes) = %d, want 10", len(g.Nodes))
	}
	// Surviving links must connect surviving nodes only.
	for _, l := range g.Links {
		if g.NodeByID(l.SourceID) == nil || g.NodeByID(l.TargetID) == nil {
			t.Errorf("link %s→%s references truncated node", l.SourceID, l.TargetID)
		}
	}
}

func TestAggregateDeterministicOrder(t *testing.T) {
	a, _ := Aggregate(sampleRecords(), AggregateOptions{})
	b, _ := Aggregate(sampleRecords(), AggregateOptions{})

	for i := range a.Nodes {
		if a.Nodes[i].ID != b.Nodes[i].ID {
			t.Fatalf("node order differs at %d: %s vs %s", i, a.Nodes[i].ID, b.Nodes[i].ID)
		}
	}
	// Amounts descend.
	for i := 1; i < len(a.Nodes); i++ {
		if a.Nodes[i].Amount > a.Nodes[i-1].Amount {
			t.Errorf("nodes not sorted by descending amount at %d", i)
		}
	}
}

func TestDropDangling(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b"}}
	links := []Link{
		{SourceID: "a", TargetID: "b"},
		{SourceID: "a", TargetID: "ghost"},
		{SourceID: "ghost", TargetID: "b"},
	}
	kept := DropDangling(nodes, links)
	if len(kept) != 1 {
		t.Fatalf("len(kept) = %d, want 1", len(kept))
	}
	if kept[0].TargetID != "b" {
		t.Errorf("kept wrong link: %+v", kept[0])
	}
}

func TestAggregateFlow(t *testing.T) {
	records := sampleRecords()
	records[0].FundingAddress = "bc1qfunder"
	records[1].FundingAddress = "bc1qfunder"

	fs, err := AggregateFlow(records)
	if err != nil {
		t.Fatalf("AggregateFlow() error = %v", err)
	}

	if len(fs.Inputs) != 1 {
		t.Errorf("len(Inputs) = %d, want 1", len(fs.Inputs))
	}
	if len(fs.Txs) != 2 {
		t.Errorf("len(Txs) = %d, want 2", len(fs.Txs))
	}
	if len(fs.Outputs) != 2 {
		t.Errorf("len(Outputs) = %d, want 2", len(fs.Outputs))
	}
	// in→tx for both funded records plus tx→out per (tx, addr) pair.
	if len(fs.Links) != 4 {
		t.Errorf("len(Links) = %d, want 4", len(fs.Links))
	}

	if fs.Inputs[0].Kind != KindInputAddress {
		t.Errorf("input kind = %q, want %q", fs.Inputs[0].Kind, KindInputAddress)
	}
	if fs.Inputs[0].Amount != 2.0 {
		t.Errorf("funder amount = %v, want 2.0", fs.Inputs[0].Amount)
	}
}

func TestMaxRisk(t *testing.T) {
	tests := []struct {
		a, b, want RiskLevel
	}{
		{RiskLow, RiskHigh, RiskHigh},
		{RiskHigh, RiskLow, RiskHigh},
		{RiskUnknown, RiskMedium, RiskMedium},
		{RiskLow, RiskLow, RiskLow},
		{RiskUnknown, RiskUnknown, RiskUnknown},
	}
	for _, tt := range tests {
		if got := MaxRisk(tt.a, tt.b); got != tt.want {
			t.Errorf("MaxRisk(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}
