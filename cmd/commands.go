package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/acrylian/flickrfeed/internal/config"
	"github.com/acrylian/flickrfeed/internal/feed"
	"github.com/acrylian/flickrfeed/internal/model"
	"github.com/acrylian/flickrfeed/internal/options"
	"github.com/acrylian/flickrfeed/internal/server"
)

func withApp(run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		return run(cmd, args, a)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the rendered feed and the option page over HTTP",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			ctx := cmd.Context()

			srv := &http.Server{
				Addr:              config.Get().ListenAddr,
				Handler:           server.New(a.feed, a.options).Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errs := make(chan error, 1)
			go func() {
				log.Printf("[INFO] listening on %s", srv.Addr)
				errs <- srv.ListenAndServe()
			}()

			select {
			case err := <-errs:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}

			log.Printf("[INFO] http server stopped")
			return nil
		}),
	}
}

func newRenderCmd() *cobra.Command {
	var (
		count int
		class string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the thumbnail list as HTML",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			out, err := a.feed.Render(cmd.Context(), count, class)
			if err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		}),
	}

	cmd.Flags().IntVar(&count, "count", feed.DefaultCount, "number of images to display")
	cmd.Flags().StringVar(&class, "class", feed.DefaultClass, "class attribute of the list")

	return cmd
}

type itemView struct {
	Title       string `yaml:"title"`
	URL         string `yaml:"url"`
	Date        string `yaml:"date"`
	Thumbnail   string `yaml:"thumbnail,omitempty"`
	Description string `yaml:"description,omitempty"`
}

func newItemsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List the feed items",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			ctx := cmd.Context()

			userID, err := a.options.UserID(ctx)
			if err != nil {
				return err
			}
			if userID == "" {
				return feed.ErrConfigMissing
			}

			items, err := a.feed.GetFeed(ctx)
			if err != nil {
				if !errors.Is(err, feed.ErrFetchFailed) && !errors.Is(err, feed.ErrParseFailed) {
					return err
				}
				log.Printf("[ERROR] %v, showing cached items", err)
			}

			layout, err := a.options.DateFormat(ctx)
			if err != nil {
				return err
			}

			views := lo.Map(items, func(item model.FeedItem, _ int) itemView {
				thumb, _ := feed.ItemThumbnail(item)
				return itemView{
					Title:       feed.ItemTitle(item),
					URL:         feed.ItemURL(item),
					Date:        feed.ItemDate(item, layout),
					Thumbnail:   thumb,
					Description: feed.ItemText(item),
				}
			})

			return writeItems(cmd.OutOrStdout(), format, views)
		}),
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text or yaml")

	return cmd
}

func writeItems(w io.Writer, format string, views []itemView) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		for _, v := range views {
			fmt.Fprintf(w, "%s  %s\n  %s\n", v.Date, v.Title, v.URL)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (valid: text, yaml)", format)
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the cached feed",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			return a.feed.ClearCache(cmd.Context())
		}),
	}
}

func newOptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show or change plugin options",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the plugin options and their values",
			Args:  cobra.NoArgs,
			RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
				for _, opt := range a.options.Supported() {
					v, err := a.options.Get(cmd.Context(), opt.Key)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%-24s %q\n  %s\n", opt.Key, v, opt.Desc)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Set a plugin option",
			Args:  cobra.ExactArgs(2),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				ctx := cmd.Context()

				key, value := args[0], args[1]
				if !lo.ContainsBy(a.options.Supported(), func(o model.Option) bool { return o.Key == key }) {
					return fmt.Errorf("unknown option %q", key)
				}

				if err := a.options.Set(ctx, key, value); err != nil {
					return err
				}

				return a.feed.HandleOptionSave(ctx, key == options.KeyCacheClear && lo.Contains([]string{"1", "true", "on"}, value))
			}),
		},
	)

	return cmd
}
