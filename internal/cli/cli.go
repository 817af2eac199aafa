// Package cli implements the buildingmap command-line interface.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/buildingmap/pkg/building"
	"github.com/matzehuels/buildingmap/pkg/buildinfo"
	"github.com/matzehuels/buildingmap/pkg/config"
	bmio "github.com/matzehuels/buildingmap/pkg/io"
	"github.com/matzehuels/buildingmap/pkg/scene"
	"github.com/matzehuels/buildingmap/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "buildingmap"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	ConfigPath string
	Config     *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "buildingmap loads, edits and saves building floor-plan maps",
		Long:         `buildingmap works with multi-level building maps: it canonicalises documents, renumbers vertex references densely on every save, and serves a live map over HTTP for editing and saving.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/buildingmap/config.toml)")

	root.AddCommand(c.saveCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())

	return root
}

// loadConfig reads the config file and attaches the logger to the command
// context. The configured level only applies when --verbose is off.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	path := c.ConfigPath
	if path == "" {
		if p, err := configPath(); err == nil {
			path = p
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Config = cfg

	if c.Logger.GetLevel() != LogDebug {
		if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
			c.SetLogLevel(level)
		}
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Scene and Sink Factories
// =============================================================================

// loadScene imports a document and spawns it into a fresh scene.
func loadScene(path string) (*scene.Scene, *building.Map, error) {
	m, err := bmio.ImportFile(path)
	if err != nil {
		return nil, nil, err
	}
	s := scene.New()
	if _, err := s.Spawn(m); err != nil {
		return nil, nil, err
	}
	return s, m, nil
}

// newRouter builds a sink router with a memory backend plus every backend the
// config enables. The returned close function releases network clients.
func (c *CLI) newRouter(ctx context.Context) (*storage.Router, *storage.MemoryBackend, func(), error) {
	cfg := c.Config
	def := cfg.SaveFormat()
	r := storage.NewRouter(def, c.Logger)
	mem := storage.NewMemoryBackend(def)
	r.Register(storage.SchemeMemory, mem)
	var closers []func()

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		r.Register(storage.SchemeRedis, storage.NewRedisBackend(client, def, cfg.RedisTTL()))
		closers = append(closers, func() { _ = client.Close() })
		c.Logger.Debug("redis sink enabled", "addr", cfg.Redis.Addr)
	}

	if cfg.Mongo.URI != "" {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			closeAll(closers)
			return nil, nil, nil, err
		}
		r.Register(storage.SchemeMongo, storage.NewMongoBackend(client.Database(cfg.Mongo.Database)))
		closers = append(closers, func() { _ = client.Disconnect(context.Background()) })
		c.Logger.Debug("mongodb sink enabled", "database", cfg.Mongo.Database)
	}

	if cfg.S3.Endpoint != "" {
		client, err := minio.New(cfg.S3.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
			Secure: cfg.S3.UseSSL,
			Region: cfg.S3.Region,
		})
		if err != nil {
			closeAll(closers)
			return nil, nil, nil, err
		}
		r.Register(storage.SchemeS3, storage.NewS3Backend(client, def))
		c.Logger.Debug("s3 sink enabled", "endpoint", cfg.S3.Endpoint)
	}

	return r, mem, func() { closeAll(closers) }, nil
}

func closeAll(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

// =============================================================================
// Paths
// =============================================================================

// configPath returns the config file path using XDG standard
// (~/.config/buildingmap/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// defaultGraphPath derives an output name such as "office.L1.svg".
func defaultGraphPath(input, level, ext string) string {
	base := filepath.Base(input)
	for _, suffix := range []string{".yaml", ".yml", ".json", ".building"} {
		base = strings.TrimSuffix(base, suffix)
	}
	return base + "." + level + "." + ext
}

var errNoLevel = errors.New("map has several levels; pass --level")

// completeMapFiles restricts shell completion of the input argument to map
// documents. The completion command itself is cobra's default.
func completeMapFiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"yaml", "yml", "json"}, cobra.ShellCompDirectiveFilterFileExt
}
