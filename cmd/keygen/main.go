package main

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"flag"
	"fmt"
	"log"
	"os"
)

// keygen generates the RSA keypair a player registers with, and can sign a
// login nonce with an existing private key:
//
//	keygen -out player            writes player.pem and player.pub.pem
//	keygen -key player.pem -sign <nonce>   prints the base64 signature
func main() {
	out := flag.String("out", "player", "basename for the generated key files")
	bits := flag.Int("bits", 2048, "RSA key size")
	keyFile := flag.String("key", "", "private key PEM to sign with")
	sign := flag.String("sign", "", "nonce to sign")
	flag.Parse()

	if *sign != "" {
		if *keyFile == "" {
			log.Fatal("-sign requires -key")
		}
		signNonce(*keyFile, *sign)
		return
	}

	key, err := rsa.GenerateKey(rand.Reader, *bits)
	if err != nil {
		log.Fatalf("Failed to generate key: %v", err)
	}

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PUBLIC KEY",
		Bytes: x509.MarshalPKCS1PublicKey(&key.PublicKey),
	})

	privPath := *out + ".pem"
	pubPath := *out + ".pub.pem"
	if err := os.WriteFile(privPath, privPEM, 0600); err != nil {
		log.Fatalf("Failed to write %s: %v", privPath, err)
	}
	if err := os.WriteFile(pubPath, pubPEM, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", pubPath, err)
	}

	fmt.Printf("Wrote %s and %s\n", privPath, pubPath)
	fmt.Println("Register with the contents of the public key file as public_key.")
}

func signNonce(keyFile, nonce string) {
	data, err := os.ReadFile(keyFile)
	if err != nil {
		log.Fatalf("Failed to read key: %v", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		log.Fatal("Key file is not PEM")
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		log.Fatalf("Failed to parse private key: %v", err)
	}

	digest := sha256.Sum256([]byte(nonce))
	signature, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		log.Fatalf("Failed to sign: %v", err)
	}
	fmt.Println(base64.StdEncoding.EncodeToString(signature))
}
