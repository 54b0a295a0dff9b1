// Package cartcli is the command line front end for a local or Redis-backed
// cart.
package cartcli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Apurer/go-gin-supply-api/internal/cart"
	"github.com/Apurer/go-gin-supply-api/internal/cart/redisstore"
)

const usage = `usage: cart [flags] <command> [args]

commands:
  add <productId> <quantity>   add quantity (may be negative) to a line
  remove <productId>           drop a line
  set <productId> <quantity>   replace a line's quantity
  clear                        empty the cart
  count                        total units in the cart
  list                         lines as JSON
  total                        price the cart against the products API
`

var errUsage = errors.New("invalid usage")

type options struct {
	dir     string
	redis   string
	session string
	api     string
}

// Run executes one cart command. A nil client means http.DefaultClient.
func Run(ctx context.Context, args []string, stdout io.Writer, client *http.Client) error {
	fs := flag.NewFlagSet("cart", flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage, "\nflags:\n")
		fs.PrintDefaults()
	}
	var opts options
	fs.StringVar(&opts.dir, "dir", ".", "directory holding the cart file")
	fs.StringVar(&opts.redis, "redis", "", "redis address; stores the cart in redis instead of a file")
	fs.StringVar(&opts.session, "session", "", "redis cart session (a new one is printed when empty)")
	fs.StringVar(&opts.api, "api", "http://localhost:8080", "supply API base URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	storage, closeStorage, err := openStorage(opts, stdout)
	if err != nil {
		return err
	}
	defer closeStorage()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := cart.New(ctx, storage, cart.WithLogger(logger))

	command, rest := fs.Arg(0), fs.Args()[1:]
	switch command {
	case "add", "set":
		if len(rest) != 2 {
			return fmt.Errorf("%w: %s needs <productId> <quantity>", errUsage, command)
		}
		id, err := parseProductID(rest[0])
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("%w: quantity %q is not an integer", errUsage, rest[1])
		}
		if command == "add" {
			c.AddToCart(ctx, id, qty)
		} else {
			c.UpdateQuantity(ctx, id, qty)
		}
		return printItems(stdout, c.Items())
	case "remove":
		if len(rest) != 1 {
			return fmt.Errorf("%w: remove needs <productId>", errUsage)
		}
		id, err := parseProductID(rest[0])
		if err != nil {
			return err
		}
		c.RemoveFromCart(ctx, id)
		return printItems(stdout, c.Items())
	case "clear":
		c.ClearCart(ctx)
		return printItems(stdout, c.Items())
	case "count":
		_, err := fmt.Fprintln(stdout, c.ItemCount())
		return err
	case "list":
		return printItems(stdout, c.Items())
	case "total":
		catalog, err := FetchProducts(ctx, client, opts.api)
		if err != nil {
			return err
		}
		q := cart.Quote(c.Items(), catalog)
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(q)
	default:
		fs.Usage()
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func openStorage(opts options, stdout io.Writer) (cart.Storage, func(), error) {
	if opts.redis == "" {
		return cart.NewFileStorage(opts.dir), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: opts.redis})
	store := redisstore.New(client, opts.session)
	if opts.session == "" {
		fmt.Fprintf(stdout, "session: %s\n", store.Session())
	}
	return store, func() { _ = client.Close() }, nil
}

func parseProductID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: product id %q must be a positive integer", errUsage, raw)
	}
	return id, nil
}

func printItems(w io.Writer, items []cart.Item) error {
	return json.NewEncoder(w).Encode(items)
}

// FetchProducts reads the catalog from GET <baseURL>/api/products. A nil
// client means http.DefaultClient.
func FetchProducts(ctx context.Context, client *http.Client, baseURL string) ([]cart.Product, error) {
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/api/products", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch products: unexpected status %s", resp.Status)
	}
	var products []cart.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}
