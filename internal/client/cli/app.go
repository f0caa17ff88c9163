package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/services"
	"github.com/dmitrijs2005/gophauth/internal/filex"
)

// ErrUnknownCommand is returned by Exec for an unrecognised subcommand.
var ErrUnknownCommand = errors.New("unknown command")

type App struct {
	config      *config.Config
	authService services.AuthService
	db          *sql.DB
	email       string
	reader      *bufio.Reader
	out         io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	dbPath, err := filex.EnsureParentDir(c.DBPath)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := client.NewGophAuthClient(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	as := services.NewAuthService(apiClient, db)

	return &App{config: c, authService: as, db: db, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

// Run executes args[0] as a one-shot command, or starts the prompt when
// args is empty.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.close(ctx)

	a.restore(ctx)

	if len(args) > 0 {
		return a.Exec(ctx, args[0])
	}

	a.Root(ctx)
	return nil
}

func (a *App) close(ctx context.Context) {
	if err := a.authService.Close(ctx); err != nil {
		log.Printf("close client: %v", err)
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) restore(ctx context.Context) {
	email, err := a.authService.Restore(ctx)
	if err != nil {
		if !errors.Is(err, services.ErrNotLoggedIn) {
			log.Printf("restore session: %v", err)
		}
		return
	}
	a.email = email
}

// Exec runs a single command by name.
func (a *App) Exec(ctx context.Context, cmd string) error {
	switch cmd {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "whoami":
		return a.WhoAmI(ctx)
	case "logout":
		return a.Logout(ctx)
	default:
		fmt.Fprintln(a.out, "Unknown command:", cmd)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
}

func (a *App) isLoggedIn() bool {
	return a.email != ""
}

func (a *App) getStatus() string {
	if a.email == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.email)
}

// callCtx bounds a single server call by the configured timeout.
func (a *App) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
