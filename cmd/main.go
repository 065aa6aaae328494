// Copyright (c) 2024, 0x0BSoD. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/acrylian/flickrfeed/internal/cache"
	"github.com/acrylian/flickrfeed/internal/config"
	"github.com/acrylian/flickrfeed/internal/feed"
	"github.com/acrylian/flickrfeed/internal/options"
	"github.com/acrylian/flickrfeed/internal/reporter"
	"github.com/acrylian/flickrfeed/internal/source"
	"github.com/acrylian/flickrfeed/internal/storage"
)

type app struct {
	db      *sqlx.DB
	options *options.Options
	feed    *feed.Service
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		log.Printf("[ERROR] failed to close db: %v", err)
	}
}

func setup(ctx context.Context) (*app, error) {
	cfg := config.Get()

	db, err := storage.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	opts := options.New(storage.NewOptionStorage(db), cfg.ManualCacheClear)
	if err := opts.Init(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init options: %w", err)
	}

	retriever, err := source.New(cfg.FeedParser, cfg.FetchTimeout)
	if err != nil {
		db.Close()
		return nil, err
	}

	rep, err := reporter.NewFromToken(cfg.TelegramBotToken, cfg.TelegramAdminChatID)
	if err != nil {
		log.Printf("[ERROR] failed to create telegram reporter, reporting disabled: %v", err)
		rep = nil
	}

	svc := feed.New(
		cache.New(storage.NewPluginStorage(db)),
		opts,
		retriever,
		rep,
		cfg.FeedEndpoint,
		nil,
	)

	return &app{db: db, options: opts, feed: svc}, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "flickrfeed",
		Short:        "Latest public photos of a Flickr account as a thumbnail list",
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newRenderCmd(),
		newItemsCmd(),
		newClearCmd(),
		newOptionsCmd(),
	)

	return root
}
