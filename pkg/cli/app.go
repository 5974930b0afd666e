package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"linkvault/pkg/cli/tui"
	"linkvault/pkg/config"
	"linkvault/pkg/gateway/httpapi"
	"linkvault/pkg/preview"
	"linkvault/pkg/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pelletier/go-toml/v2"
)

type App struct {
	cfg    *config.Config
	client *httpapi.Client
	store  *store.Store
}

func NewApp(cfg *config.Config) *App {
	return &App{
		cfg: cfg,
	}
}

// getClient returns the HTTP client, creating it if necessary
func (a *App) getClient() (*httpapi.Client, error) {
	if a.client != nil {
		return a.client, nil
	}

	if a.cfg.CLI.BaseURL == "" {
		return nil, fmt.Errorf("base URL not configured")
	}
	if a.cfg.CLI.APIKey == "" {
		return nil, fmt.Errorf("API key not configured (run --register first)")
	}

	a.client = httpapi.NewClient(a.cfg.CLI.BaseURL, a.cfg.CLI.APIKey)
	return a.client, nil
}

// getStore builds the synchronization store over the HTTP gateways and
// performs the initial refresh.
func (a *App) getStore(ctx context.Context) (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	client, err := a.getClient()
	if err != nil {
		return nil, err
	}

	user, err := client.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}

	grace := time.Duration(a.cfg.CLI.UndoGraceSeconds) * time.Second
	s := store.New(
		client.Collections(),
		client.Sharing(),
		client.ShareLinks(),
		client.Directory(),
		store.WithGraceWindow(grace),
		store.WithResolver(preview.NewResolver()),
	)
	if err := s.SetUser(ctx, user.ID); err != nil {
		return nil, err
	}
	a.store = s
	return s, nil
}

// ShowConfig displays the current configuration
func (a *App) ShowConfig() {
	data, err := toml.Marshal(a.cfg)
	if err != nil {
		fmt.Printf("Error marshaling config: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// SetConfig sets a configuration value
// Format: section.key=value (e.g., "database.url=postgres://...")
func (a *App) SetConfig(setStr string) error {
	parts := strings.SplitN(setStr, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid format: expected 'section.key=value'")
	}

	keyPath := strings.Split(parts[0], ".")
	value := parts[1]

	if len(keyPath) != 2 {
		return fmt.Errorf("invalid key format: expected 'section.key'")
	}

	section := keyPath[0]
	key := keyPath[1]

	switch section {
	case "database":
		switch key {
		case "url":
			a.cfg.Database.URL = value
		default:
			return fmt.Errorf("unknown database key: %s", key)
		}
	case "api":
		switch key {
		case "host":
			a.cfg.API.Host = value
		case "port":
			var port int
			if _, err := fmt.Sscanf(value, "%d", &port); err != nil {
				return fmt.Errorf("invalid port value: %s", value)
			}
			a.cfg.API.Port = port
		default:
			return fmt.Errorf("unknown api key: %s", key)
		}
	case "cli":
		switch key {
		case "base_url":
			a.cfg.CLI.BaseURL = value
		case "api_key":
			a.cfg.CLI.APIKey = value
		case "undo_grace_seconds":
			var secs int
			if _, err := fmt.Sscanf(value, "%d", &secs); err != nil {
				return fmt.Errorf("invalid undo_grace_seconds value: %s", value)
			}
			a.cfg.CLI.UndoGraceSeconds = secs
		default:
			return fmt.Errorf("unknown cli key: %s", key)
		}
	default:
		return fmt.Errorf("unknown section: %s", section)
	}

	return config.Save(a.cfg)
}

// Run launches the interactive TUI.
func (a *App) Run(ctx context.Context) error {
	s, err := a.getStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	p := tea.NewProgram(tui.NewRootModel(s))
	_, err = p.Run()
	return err
}

// ListContainers prints the user's containers in a table.
func (a *App) ListContainers(ctx context.Context) {
	s, err := a.getStore(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	containers := s.Containers()
	if len(containers) == 0 {
		fmt.Println("No containers found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tName\tLinks\tShared\tCreated")
	fmt.Fprintln(w, "───\t───\t───\t───\t───")

	for _, container := range containers {
		shared := ""
		if container.IsShared(s.UserID()) {
			shared = "shared with me"
		} else if len(container.AuthorizedUsers) > 0 {
			shared = fmt.Sprintf("%d users", len(container.AuthorizedUsers))
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			container.ID.String()[:8]+"...",
			container.Name,
			len(container.Links),
			shared,
			container.CreatedAt.Format("2006-01-02 15:04"),
		)
	}

	w.Flush()
	fmt.Printf("\nTotal: %d container(s)\n", len(containers))
}

// RegisterUser creates a new user account and saves the API key
func (a *App) RegisterUser(ctx context.Context, email, displayName string) error {
	if a.cfg.CLI.BaseURL == "" {
		return fmt.Errorf("base URL not configured")
	}
	// Registration does not require auth
	client := httpapi.NewClient(a.cfg.CLI.BaseURL, "")

	user, err := client.Register(ctx, email, displayName)
	if err != nil {
		return err
	}

	// Save API key to config
	a.cfg.CLI.APIKey = user.APIKey
	if err := config.Save(a.cfg); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}

	a.client = httpapi.NewClient(a.cfg.CLI.BaseURL, user.APIKey)

	fmt.Println("✓ User registered successfully!")
	fmt.Printf("  Email: %s\n", user.Email)
	fmt.Printf("  User ID: %s\n", user.ID.String())
	fmt.Printf("  API key saved to config automatically\n")
	fmt.Println("\n⚠️  Save this API key securely (it won't be shown again):")
	fmt.Printf("  %s\n", user.APIKey)

	return nil
}
