package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

const SecretKeyBytesLen = 32

// Print random secret key as base64, ready for SECRET_KEY
func main() {
	n := pflag.IntP("bytes", "n", SecretKeyBytesLen, "Secret key length in bytes")
	pflag.Parse()

	if *n < SecretKeyBytesLen {
		fmt.Fprintf(os.Stderr, "secret key should be at least %d bytes\n", SecretKeyBytesLen)
		os.Exit(1)
	}

	b := make([]byte, *n)

	_, err := rand.Read(b)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(base64.StdEncoding.EncodeToString(b))
}
