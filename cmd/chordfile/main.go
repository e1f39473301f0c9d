// Command chordfile is a small client exercising the file engine end
// to end: it resolves ownership through one known ring member and
// talks to the owner directly, without joining the ring itself, then
// puts or gets one file through it.
//
// Usage:
//
//	chordfile -join host:port [-pass secret] put path/to/local/file
//	chordfile -join host:port [-pass secret] get dfsf://nick@identifier
//
// Flags must come before the subcommand.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"

	"chordfs.io/config"
	"chordfs.io/dht"
	"chordfs.io/file"
	"chordfs.io/keys"
	"chordfs.io/log"
	"chordfs.io/uri"
)

func main() {
	joinAddr := flag.String("join", "", "address of a ring member to route requests through")
	nick := flag.String("nick", "anon", "author nickname recorded on writes")
	pass := flag.String("pass", "", "password to derive this file's part-encryption key from (empty writes plaintext)")
	blockSize := flag.Int("blocksize", file.DefaultBlockSize, "ciphertext part size in bytes")
	confPath := flag.String("config", "", "path to a YAML configuration file (optional)")
	flag.Parse()

	if *joinAddr == "" {
		log.Fatalf("chordfile: -join is required")
	}
	args := flag.Args()
	if len(args) < 2 {
		log.Fatalf("chordfile: usage: chordfile -join addr {put|get} target")
	}

	cfg := config.New()
	if *confPath != "" {
		loaded, err := config.Load(*confPath)
		if err != nil {
			log.Fatalf("chordfile: %v", err)
		}
		cfg = loaded
	}
	maxBuffer := cfg.Int("File:maxbuffer", file.DefaultMaxBuffer)

	client := dht.NewRoutedClient(*joinAddr, *nick)

	var ks keys.Set
	if *pass != "" {
		ks.Kf = keys.PasswordToKey(*pass)
	}

	switch args[0] {
	case "put":
		if err := runPut(client, ks, *nick, *blockSize, maxBuffer, args[1]); err != nil {
			log.Fatalf("chordfile: %v", err)
		}
	case "get":
		if err := runGet(client, ks, *blockSize, args[1]); err != nil {
			log.Fatalf("chordfile: %v", err)
		}
	default:
		log.Fatalf("chordfile: unknown subcommand %q", args[0])
	}
}

func runPut(client dht.Store, ks keys.Set, nick string, blockSize, maxBuffer int, path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	u, err := uri.Random(nick, false)
	if err != nil {
		return err
	}
	w := file.NewWriterWithBuffer(client, u, ks, "", nick, blockSize, file.DefaultDescPerMetapart, maxBuffer)
	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	static, err := u.Static()
	if err != nil {
		return err
	}
	fmt.Println(static)
	return nil
}

func runGet(client dht.Store, ks keys.Set, blockSize int, target string) error {
	u, err := uri.Parse(target, ks.Kd)
	if err != nil {
		return err
	}
	r, err := file.Open(client, u, ks, blockSize)
	if err != nil {
		return err
	}
	defer r.Close()
	_, err = os.Stdout.Write(r.Bytes())
	return err
}
