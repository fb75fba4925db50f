package main

import (
	"bytes"
	"context"
	"log"

	"github.com/iamNilotpal/relstore"
	"github.com/iamNilotpal/relstore/pkg/errors"
	"github.com/iamNilotpal/relstore/pkg/options"
	"github.com/iamNilotpal/relstore/pkg/relpath"
)

func main() {
	store, err := relstore.New(
		context.Background(), "relstore",
		options.WithDataDir("./data"),
	)
	if err != nil {
		log.Fatalf("store create error : %#v \n", err)
	}

	defer func() {
		if err := store.Close(); err != nil {
			log.Fatalf("store close error : %#v \n", err)
		}
	}()

	key := relpath.RelKeyBackend{
		Key:     relpath.RelKey{Tablespace: 1663, Database: 1, Relation: 16384},
		Backend: relpath.InvalidBackend,
	}

	rel, err := store.Open(key)
	if err != nil {
		log.Fatalf("open error : %#v \n", err)
	}

	if err := store.Create(rel, relpath.ForkMain, false); err != nil {
		log.Fatalf("create error : %#v \n", err)
	}

	block := bytes.Repeat([]byte{0xAB}, int(options.BlockSize))
	if err := store.Extend(rel, relpath.ForkMain, 0, block, false); err != nil {
		if se, ok := errors.AsStorageError(err); ok {
			log.Printf("Code: %#v \n", se.Code())
			log.Printf("Fork: %#v \n", se.Fork())
			log.Printf("Block: %#v \n", se.Block())
			log.Printf("Path: %#v \n", se.Path())
		}
		log.Fatalf("extend error : %#v \n", err)
	}

	readBack := make([]byte, options.BlockSize)
	if err := store.Read(rel, relpath.ForkMain, 0, readBack); err != nil {
		log.Fatalf("read error : %#v \n", err)
	}

	nblocks, err := store.NBlocks(rel, relpath.ForkMain)
	if err != nil {
		log.Fatalf("nblocks error : %#v \n", err)
	}

	log.Printf("fork %s has %d block(s); round trip ok: %v \n",
		relpath.ForkMain, nblocks, bytes.Equal(block, readBack))
}
