package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/afterlife/internal/client/config"
	"github.com/dmitrijs2005/afterlife/internal/client/contract"
	"github.com/dmitrijs2005/afterlife/internal/client/metrics"
	"github.com/dmitrijs2005/afterlife/internal/client/notify"
	"github.com/dmitrijs2005/afterlife/internal/client/repositories/journal"
	"github.com/dmitrijs2005/afterlife/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/afterlife/internal/client/session"
	"github.com/dmitrijs2005/afterlife/internal/client/snapshot"
	"github.com/dmitrijs2005/afterlife/internal/client/storage"
	"github.com/dmitrijs2005/afterlife/internal/client/wallet"
	"github.com/dmitrijs2005/afterlife/internal/filex"
	"github.com/dmitrijs2005/afterlife/internal/logging"
	"github.com/ethereum/go-ethereum/common"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	metrics *metrics.Metrics

	session *session.Controller
	notes   *notify.Console
	wallets *wallet.Registry
	vault   *wallet.VaultProvider
	journal journal.Repository
	prefs   metadata.Repository
	store   *storage.Repositories

	closers []func()

	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time
}

// NewApp opens the local database, dials the node and wires the session.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(os.Stderr, c.LogLevel)

	if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, err
	}
	repos, err := storage.Open(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	gw, err := contract.Dial(ctx, c.RPCURL, common.HexToAddress(c.ContractAddress), c.ChainID, c.ReceiptPollInterval, log)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	m := metrics.New()
	notes := notify.NewConsole(os.Stdout)
	ctrl, err := session.New(session.Options{
		Chain:           gw,
		Fetcher:         snapshot.NewAggregator(gw, log, m),
		Notifier:        notes,
		Log:             log,
		RefreshInterval: c.RefreshInterval,
		Recorder:        repos.Journal,
		Metrics:         m,
	})
	if err != nil {
		gw.Close()
		_ = repos.Close()
		return nil, err
	}

	a := &App{
		config:  c,
		log:     log,
		metrics: m,
		session: ctrl,
		notes:   notes,
		journal: repos.Journal,
		prefs:   repos.Metadata,
		store:   repos,
		closers: []func(){gw.Close, func() { _ = repos.Close() }},
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		now:     time.Now,
	}
	a.vault = &wallet.VaultProvider{Keys: repos.Keys, Passphrase: a.passphrase, Approve: a.approve}
	a.wallets = wallet.NewRegistry(
		&wallet.KeystoreProvider{Path: c.KeystorePath, Passphrase: a.passphrase, Approve: a.approve},
		a.vault,
	)
	return a, nil
}

// Run blocks in the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.config.MetricsAddr != "" {
		go func() {
			if err := a.metrics.Serve(ctx, a.config.MetricsAddr); err != nil {
				a.log.Error(ctx, "metrics server stopped", "addr", a.config.MetricsAddr, "error", err)
			}
		}()
	}
	a.session.StartRefresher(ctx)

	printlnFn("Welcome to AfterLife CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) isConnected() bool {
	return a.session.Screen() != session.Disconnected
}

func (a *App) screen() session.Screen {
	return a.session.Screen()
}

func (a *App) getStatus() string {
	addr, err := a.session.Account()
	if err != nil {
		return "(disconnected)"
	}
	s := fmt.Sprintf("%s %s", shortAddress(addr), a.session.Screen())
	if surf := a.session.OpenSurface(); surf != nil {
		s += " " + surf.Action.Name + ":" + surf.State().Phase.String()
	} else if a.session.Busy() {
		s += " busy"
	}
	return "(" + s + ")"
}

func shortAddress(addr common.Address) string {
	h := addr.Hex()
	return h[:6] + "…" + h[len(h)-4:]
}
