// Package cli implements kanbanctl, a terminal client that drives the board
// store against the API server or a local Redis snapshot.
package cli

import (
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"taskboard/internal/config"
	"taskboard/internal/gateway"
	"taskboard/internal/store"
)

// Opener builds the gateway the store talks to. The returned func releases
// whatever the gateway holds.
type Opener func(cfg *config.Config, local bool) (gateway.Gateway, func(), error)

// OpenGateway returns the remote API client with change-order retries, or the
// Redis snapshot gateway when local is set.
func OpenGateway(cfg *config.Config, local bool) (gateway.Gateway, func(), error) {
	if local {
		if cfg.RedisAddr == "" {
			return nil, nil, fmt.Errorf("--local needs REDIS_ADDR")
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return gateway.NewSnapshot(rdb, cfg.SnapshotKey), func() { _ = rdb.Close() }, nil
	}

	remote := gateway.NewHTTP(cfg.APIURL, nil)
	return gateway.NewRetrying(remote, cfg.ChangeOrderRetries, cfg.RetryDelay), func() {}, nil
}

type app struct {
	open    Opener
	local   bool
	boardID uint
	apiURL  string

	store   *store.Store
	release func()
}

func newRootCmd(open Opener) (*cobra.Command, *app) {
	a := &app{open: open}

	root := &cobra.Command{
		Use:               "kanbanctl",
		Short:             "Kanban board client",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().BoolVar(&a.local, "local", false, "Use the local Redis snapshot instead of the API")
	root.PersistentFlags().UintVarP(&a.boardID, "board", "b", 0, "Board to work on (default: first board)")
	root.PersistentFlags().StringVar(&a.apiURL, "api", "", "API base URL (default: API_URL)")

	root.AddCommand(a.showCmd())
	root.AddCommand(a.boardsCmd())
	root.AddCommand(a.boardCmd())
	root.AddCommand(a.columnCmd())
	root.AddCommand(a.taskCmd())
	root.AddCommand(a.moveCmd())
	root.AddCommand(a.subtaskCmd())

	return root, a
}

// Execute runs kanbanctl against the configured gateway.
func Execute() error {
	root, a := newRootCmd(OpenGateway)
	if err := run(root, a); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// run executes root and releases the gateway whether or not the command
// failed; cobra skips post-run hooks after an error.
func run(root *cobra.Command, a *app) error {
	defer a.close()
	return root.Execute()
}

func (a *app) close() {
	if a.release != nil {
		a.release()
		a.release = nil
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	cfg.ConfigureLogging()
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}

	gw, release, err := a.open(cfg, a.local)
	if err != nil {
		return err
	}
	a.release = release
	a.store = store.New(gw)

	ctx := cmd.Context()
	if err := a.store.LoadBoards(ctx); err != nil {
		return err
	}
	if a.boardID != 0 && a.boardID != a.store.BoardID() {
		return a.store.SelectBoard(ctx, a.boardID)
	}
	return nil
}
