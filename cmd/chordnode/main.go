// Command chordnode runs one ring peer: it joins (or starts) the
// Chord-style ring and serves the DHT facade's ServerAdapter over
// that ring's RPC surface, so remote peers can Put and Get content
// this node has been routed ownership of.
package main

import (
	"flag"
	"fmt"
	"os"

	"chordfs.io/config"
	"chordfs.io/dht"
	"chordfs.io/id"
	"chordfs.io/kv"
	"chordfs.io/log"
	"chordfs.io/ring"
)

func main() {
	var (
		confPath = flag.String("config", "", "path to a YAML configuration file (optional)")
		addr     = flag.String("addr", ":4321", "address to listen on")
		join     = flag.String("join", "", "address of an existing ring member to join through (empty starts a new ring)")
		dataDir  = flag.String("data", "", "directory to persist stored content under (empty uses an in-memory store)")
		logLevel = flag.String("log", "info", "log level: debug, info, error, disabled")
	)
	flag.Parse()

	if err := log.SetLevel(*logLevel); err != nil {
		log.Fatalf("chordnode: %v", err)
	}

	cfg := config.New()
	if *confPath != "" {
		loaded, err := config.Load(*confPath)
		if err != nil {
			log.Fatalf("chordnode: %v", err)
		}
		cfg = loaded
	}

	selfAddr := cfg.String("Main:addr", *addr)
	selfID := id.Sum([]byte(selfAddr))
	self := ring.Peer{ID: selfID, Addr: selfAddr}

	store, err := openStore(cfg, *dataDir)
	if err != nil {
		log.Fatalf("chordnode: %v", err)
	}
	adapter := dht.NewServerAdapter(store)
	node := ring.NewNode(self, adapter)

	if joinAddr := cfg.String("Main:join", *join); joinAddr != "" {
		if err := node.Join(ring.Peer{Addr: joinAddr}); err != nil {
			log.Fatalf("chordnode: joining through %s: %v", joinAddr, err)
		}
		log.Printf("chordnode: joined the ring through %s", joinAddr)
	} else {
		log.Printf("chordnode: starting a new ring as %s (%s)", selfID, selfAddr)
	}

	srv := ring.NewServer(node)
	maxConns := cfg.Int("Main:maxconns", 256)
	log.Printf("chordnode: listening on %s", selfAddr)
	if err := srv.ListenAndServe(selfAddr, maxConns); err != nil {
		log.Fatalf("chordnode: %v", err)
	}
}

func openStore(cfg *config.File, dataDir string) (kv.Store, error) {
	dir := cfg.String("Main:data", dataDir)
	if dir == "" {
		return kv.NewMemory(), nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", dir, err)
	}
	return kv.NewLocal(dir)
}
