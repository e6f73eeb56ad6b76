package main

import (
	"encoding/hex"
	"fmt"
	"log"

	"github.com/ethereum/go-ethereum/crypto"
)

// Generates a secp256k1 key usable as ADMIN_PRIVATE_KEY or EIGENDA_AUTH_PK.
func main() {
	key, err := crypto.GenerateKey()
	if err != nil {
		log.Fatalf("Failed to generate key pair: %v", err)
	}
	fmt.Println("Address:    ", crypto.PubkeyToAddress(key.PublicKey).Hex())
	fmt.Println("Private Key:", hex.EncodeToString(crypto.FromECDSA(key)))
}
