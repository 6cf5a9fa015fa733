package errors

import (
	"math"
	"testing"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{"valid P2PKH", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", false},
		{"valid bech32", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", false},
		{"empty", "", true},
		{"too short", "1A1zP1eP", true},
		{"whitespace", "1A1zP1eP5QGefi2DMP TfTL5SLmv7DivfNa", true},
		{"path traversal", "../../etc/passwd-aaaaaaaaaa", true},
		{"slash", "bc1q/w508d6qejxtdg4y5r3zarvary", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.addr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAddress(%q) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidAddress) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidAddress)
			}
		})
	}
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"positive", 1.5, false},
		{"negative", -0.001, true},
		{"NaN", math.NaN(), true},
		{"Inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(tt.amount)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAmount(%v) error = %v, wantErr %v", tt.amount, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"simple", "utxos.json", false},
		{"nested", "exports/wallet/utxos.json", false},
		{"empty", "", true},
		{"traversal", "../secrets", true},
		{"backslash", "exports\\utxos.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}
