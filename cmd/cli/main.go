package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"charhub/internal/client"
	"charhub/pkg/database"
)

type options struct {
	baseURL   string
	dbPath    string
	source    string
	ephemeral bool
	timeout   time.Duration
}

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	global := flag.NewFlagSet("charhub", flag.ExitOnError)
	opts := options{}
	global.StringVar(&opts.baseURL, "api", client.DefaultBaseURL, "proxy base URL")
	global.StringVar(&opts.dbPath, "db", database.DefaultConfig().Path, "local storage database path")
	global.StringVar(&opts.source, "source", client.SourceLocal, "where create/update go: local or remote")
	global.BoolVar(&opts.ephemeral, "ephemeral", false, "keep local storage in memory only")
	global.DurationVar(&opts.timeout, "timeout", 15*time.Second, "HTTP timeout")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	ctx := context.Background()
	if args[0] == "watch" {
		if err := watch(ctx, opts.baseURL, os.Stdout); err != nil {
			log.Fatalf("watch: %v", err)
		}
		return
	}

	app, closeFn, err := buildApp(ctx, opts, log)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer closeFn()

	if err := run(ctx, app, args[0], args[1:], os.Stdout); err != nil {
		closeFn()
		log.Fatalf("%s: %v", args[0], err)
	}
}

func buildApp(ctx context.Context, opts options, log logrus.FieldLogger) (*client.App, func(), error) {
	api := client.NewAPIClient(opts.baseURL, opts.timeout)

	var (
		storage client.Storage
		closeFn = func() {}
	)
	if opts.ephemeral {
		storage = client.NewMemoryStorage()
	} else {
		db, err := database.Open(database.Config{Path: opts.dbPath})
		if err != nil {
			return nil, nil, fmt.Errorf("open local storage: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate local storage: %w", err)
		}
		storage = client.NewSQLiteStorage(db)
		closeFn = func() { _ = db.Close() }
	}

	local := client.NewLocalList(storage, log)
	if _, err := local.Init(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("seed local storage: %w", err)
	}

	repo, err := client.NewRepository(opts.source, local, api)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return client.NewApp(api, repo, log), closeFn, nil
}

func run(ctx context.Context, app *client.App, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "filter":
		fs := flag.NewFlagSet("filter", flag.ContinueOnError)
		status := fs.String("status", "", "Alive, Dead or unknown")
		species := fs.String("species", "", "species")
		gender := fs.String("gender", "", "gender")
		if err := fs.Parse(args); err != nil {
			return err
		}

		err := app.FilterSubmit(ctx, client.Filter{Status: *status, Species: *species, Gender: *gender})
		if err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) {
				fmt.Fprintf(out, "could not load characters (HTTP %d)\n", apiErr.Status)
			} else {
				fmt.Fprintln(out, "could not reach the character service")
			}
			return err
		}
		return client.RenderCards(out, app.View())

	case "create":
		fs := flag.NewFlagSet("create", flag.ContinueOnError)
		f := fieldFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		_, msg, err := app.CreateSubmit(ctx, *f)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, msg)
		return nil

	case "update":
		fs := flag.NewFlagSet("update", flag.ContinueOnError)
		id := fs.String("id", "", "character id")
		f := fieldFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		_, msg, err := app.UpdateSubmit(ctx, *id, *f)
		if errors.Is(err, client.ErrNotFound) {
			fmt.Fprintln(out, msg)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, msg)
		return nil

	case "list":
		list, err := app.Repo.List(ctx)
		if err != nil {
			return err
		}
		printJSON(out, list)
		return nil

	default:
		printUsage(out)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func fieldFlags(fs *flag.FlagSet) *client.Fields {
	f := &client.Fields{}
	fs.StringVar(&f.Name, "name", "", "name")
	fs.StringVar(&f.Status, "status", "", "Alive, Dead or unknown")
	fs.StringVar(&f.Species, "species", "", "species")
	fs.StringVar(&f.Gender, "gender", "", "gender")
	fs.StringVar(&f.Image, "image", "", "image URL")
	return f
}

// watch prints scratch list change events from the proxy until the
// connection drops.
func watch(ctx context.Context, baseURL string, out io.Writer) error {
	wsURL, err := websocketURL(baseURL, "/ws")
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var obj map[string]any
		if err := json.Unmarshal(msg, &obj); err != nil {
			fmt.Fprintln(out, string(msg))
			continue
		}
		printJSON(out, obj)
	}
}

func printJSON(out io.Writer, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "json: %v\n", err)
		return
	}
	fmt.Fprintln(out, string(b))
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "charhub [-api URL] [-db PATH] [-source local|remote] [-ephemeral] <command> [flags]")
	fmt.Fprintln(out, "commands:")
	fmt.Fprintln(out, "  filter -status -species -gender")
	fmt.Fprintln(out, "  create -name -status -species -gender [-image]")
	fmt.Fprintln(out, "  update -id -name -status -species -gender [-image]")
	fmt.Fprintln(out, "  list")
	fmt.Fprintln(out, "  watch")
}
