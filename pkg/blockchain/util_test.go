package blockchain

import (
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func TestGetAddressFromPrivateKeyECDSA(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	addr := GetAddressFromPrivateKeyECDSA(priv)
	if addr == nil {
		t.Fatal("expected non-nil address")
	}
	want := crypto.PubkeyToAddress(priv.PublicKey)
	if *addr != want {
		t.Fatalf("unexpected address: got %s want %s", addr.Hex(), want.Hex())
	}

	if GetAddressFromPrivateKeyECDSA(nil) != nil {
		t.Fatal("expected nil for nil key")
	}
}

func TestParsePrivateKeyECDSA(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	hexKey := hex.EncodeToString(crypto.FromECDSA(priv))

	for _, in := range []string{hexKey, "0x" + hexKey} {
		addr, parsedKey, err := ParsePrivateKeyECDSA(in)
		if err != nil {
			t.Fatalf("ParsePrivateKeyECDSA: %v", err)
		}
		if addr != crypto.PubkeyToAddress(priv.PublicKey) {
			t.Fatalf("unexpected address: %s", addr.Hex())
		}
		if parsedKey.D.Cmp(priv.D) != 0 {
			t.Fatal("parsed key mismatch")
		}
	}

	if _, _, err := ParsePrivateKeyECDSA("zz"); err == nil {
		t.Fatal("expected error for invalid key")
	}
}
