// Command hash-generator mints a bcrypt hash for a password so an account
// can be repaired or seeded with manual SQL when the API is unreachable.
//
// Usage:
//
//	hash-generator -password <plaintext> [-cost N]
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/mhutton/relay-api/internal/service/auth"
)

func main() {
	password := flag.String("password", "", "password to hash (required)")
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	verify := flag.String("verify", "", "existing hash to check the password against instead of hashing")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "usage: hash-generator -password <plaintext> [-cost N] [-verify <hash>]")
		os.Exit(2)
	}

	hasher := auth.NewBcryptHasher(*cost)

	if *verify != "" {
		if err := hasher.Compare(*verify, *password); err != nil {
			fmt.Fprintln(os.Stderr, "password does not match hash")
			os.Exit(1)
		}
		fmt.Println("password matches hash")
		return
	}

	hash, err := hasher.Hash(*password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
