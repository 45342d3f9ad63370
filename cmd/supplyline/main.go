// Command supplyline is the command-line client for the supply-chain backend.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dukerupert/supplyline/internal/config"
	"github.com/dukerupert/supplyline/internal/logging"
	"github.com/dukerupert/supplyline/internal/model"
)

const usage = `usage: supplyline [-config path] <command> [flags]

commands:
  signup     create an account (-username, -password, -role)
  signin     sign in and store the session (-username, -password)
  logout     forget the stored session
  status     show the stored session
  profile    show the profile (-delete removes the account)
  supplies   list the supply catalog and your custom supplies
  batches    list batches (-sync refreshes the local copy, -local reads it)
  orders     list orders
  recipes    list recipes
  sales      list sales (-watch follows new sales)
  plans      list subscription plans
  subscribe  change subscription tier: subscribe <tier>
`

// localCommands never contact the backend and run without api.base_url.
var localCommands = map[string]bool{
	"logout": true,
	"status": true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("supplyline", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("SUPPLYLINE_CONFIG"), "path to supplyline.yaml")
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("no command given")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if !localCommands[cmd] {
		if err := cfg.RequireAPI(); err != nil {
			return err
		}
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	out := json.NewEncoder(stdout)
	out.SetIndent("", "  ")

	switch cmd {
	case "signup":
		return a.signUp(ctx, rest, out)
	case "signin":
		return a.signIn(ctx, rest, out)
	case "logout":
		if err := a.logout(); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "logged out")
		return nil
	case "status":
		return a.status(stdout, out)
	case "profile":
		return a.profile(ctx, rest, stdout, out)
	case "supplies":
		return a.supplies(ctx, out)
	case "batches":
		return a.listBatches(ctx, rest, out)
	case "orders":
		orders, err := a.orders.List(ctx)
		if err != nil {
			return err
		}
		return out.Encode(orders)
	case "recipes":
		recipes, err := a.recipes.List(ctx)
		if err != nil {
			return err
		}
		return out.Encode(recipes)
	case "sales":
		return a.listSales(ctx, rest, out)
	case "plans":
		plans, err := a.subscriptions.Plans(ctx)
		if err != nil {
			return err
		}
		return out.Encode(plans)
	case "subscribe":
		return a.subscribe(ctx, rest, out)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func credentialFlags(name string, args []string, withRole bool) (username, password string, role int64, err error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&username, "username", "", "account username")
	fs.StringVar(&password, "password", os.Getenv("SUPPLYLINE_PASSWORD"), "account password")
	if withRole {
		fs.Int64Var(&role, "role", model.RoleOwner, "1 for restaurant owner, 2 for supplier")
	}
	err = fs.Parse(args)
	return
}

func (a *app) signUp(ctx context.Context, args []string, out *json.Encoder) error {
	username, password, role, err := credentialFlags("signup", args, true)
	if err != nil {
		return err
	}
	user, err := a.session.SignUp(ctx, username, password, role)
	if err != nil {
		return err
	}
	return out.Encode(user)
}

func (a *app) signIn(ctx context.Context, args []string, out *json.Encoder) error {
	username, password, _, err := credentialFlags("signin", args, false)
	if err != nil {
		return err
	}
	user, err := a.session.SignIn(ctx, username, password)
	if err != nil {
		return err
	}
	return out.Encode(user)
}

type statusView struct {
	LoggedIn         bool       `json:"loggedIn"`
	UserID           int64      `json:"userId"`
	Username         string     `json:"username,omitempty"`
	RoleID           int64      `json:"roleId"`
	SubscriptionTier int        `json:"subscriptionTier"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
}

func (a *app) status(stdout io.Writer, out *json.Encoder) error {
	if !a.session.IsLoggedIn() {
		fmt.Fprintln(stdout, "not logged in")
		return nil
	}
	s := a.session.Current()
	v := statusView{
		LoggedIn:         true,
		UserID:           s.UserID,
		Username:         s.Username,
		RoleID:           s.RoleID,
		SubscriptionTier: s.SubscriptionTier,
	}
	if exp, ok := a.session.TokenExpiry(); ok {
		v.ExpiresAt = &exp
	}
	return out.Encode(v)
}

func (a *app) profile(ctx context.Context, args []string, stdout io.Writer, out *json.Encoder) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	del := fs.Bool("delete", false, "delete the account and log out")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *del {
		if err := a.profiles.Delete(ctx); err != nil {
			return err
		}
		if err := a.batches.Clear(); err != nil {
			return fmt.Errorf("clear local batches: %w", err)
		}
		fmt.Fprintln(stdout, "account deleted")
		return nil
	}

	p, err := a.profiles.Get(ctx)
	if err != nil {
		return err
	}
	return out.Encode(p)
}

func (a *app) supplies(ctx context.Context, out *json.Encoder) error {
	catalog, err := a.inventory.ListSupplies(ctx)
	if err != nil {
		return err
	}
	custom, err := a.inventory.ListCustomSupplies(ctx)
	if err != nil {
		return err
	}
	return out.Encode(struct {
		Catalog []model.Supply       `json:"catalog"`
		Custom  []model.CustomSupply `json:"custom"`
	}{catalog, custom})
}

func (a *app) listBatches(ctx context.Context, args []string, out *json.Encoder) error {
	fs := flag.NewFlagSet("batches", flag.ContinueOnError)
	sync := fs.Bool("sync", false, "replace the local copy with the server's batches")
	local := fs.Bool("local", false, "read the local copy without contacting the server")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		batches []model.Batch
		err     error
	)
	switch {
	case *sync:
		batches, err = a.inventory.SyncBatches(ctx)
	case *local:
		batches, err = a.inventory.LocalBatches()
	default:
		batches, err = a.inventory.ListBatches(ctx)
	}
	if err != nil {
		return err
	}
	return out.Encode(batches)
}

func (a *app) listSales(ctx context.Context, args []string, out *json.Encoder) error {
	fs := flag.NewFlagSet("sales", flag.ContinueOnError)
	watch := fs.Bool("watch", false, "follow new sales until interrupted")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*watch {
		sales, err := a.sales.List(ctx)
		if err != nil {
			return err
		}
		return out.Encode(sales)
	}

	err := a.sales.Watch(ctx, func(s model.Sale) error {
		return out.Encode(s)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *app) subscribe(ctx context.Context, args []string, out *json.Encoder) error {
	if len(args) != 1 {
		return errors.New("usage: supplyline subscribe <tier>")
	}
	tier, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("tier must be a number: %w", err)
	}
	user, err := a.subscriptions.Change(ctx, tier)
	if err != nil {
		return err
	}
	return out.Encode(user)
}
