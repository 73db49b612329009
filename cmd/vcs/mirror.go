package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/bobg/vcs"
	"github.com/bobg/vcs/store"
)

// mirror makes the repository's object store and one or more other stores hold the same objects.
// The config file holds a JSON store description,
// or a JSON array of them,
// each with a "type" naming a registered store type.
func (c maincmd) mirror(ctx context.Context, config string, _ []string) error {
	if config == "" {
		return errors.New("missing -config")
	}

	confs, err := readStoreConfigs(config)
	if err != nil {
		return err
	}

	r, err := c.open(ctx)
	if err != nil {
		return err
	}

	stores := []vcs.Store{r.Store()}
	for i, conf := range confs {
		s, err := store.FromConfig(ctx, conf)
		if err != nil {
			return errors.Wrapf(err, "creating store %d from %s", i, config)
		}
		stores = append(stores, s)
	}

	if err = store.Sync(ctx, stores); err != nil {
		return errors.Wrap(err, "syncing")
	}
	if c.verbose {
		log.Printf("Synced %d stores", len(stores))
	}
	return nil
}

func readStoreConfigs(path string) ([]map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}
	data = bytes.TrimSpace(data)

	if bytes.HasPrefix(data, []byte("[")) {
		var confs []map[string]interface{}
		err = json.Unmarshal(data, &confs)
		return confs, errors.Wrapf(err, "decoding config file %s", path)
	}

	var conf map[string]interface{}
	if err = json.Unmarshal(data, &conf); err != nil {
		return nil, errors.Wrapf(err, "decoding config file %s", path)
	}
	return []map[string]interface{}{conf}, nil
}
