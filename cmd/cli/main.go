// Package main provides the lastmosaic CLI. It exports collage images from
// Last.fm data, either directly (with an API key), through a running
// lastmosaic server, or from a saved JSON file.
//
// Run with: go run ./cmd/cli export --username rj --grid 4x4
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fleveque/lastmosaic/internal/compress"
	"github.com/fleveque/lastmosaic/internal/config"
	"github.com/fleveque/lastmosaic/internal/export"
	"github.com/fleveque/lastmosaic/internal/i18n"
	"github.com/fleveque/lastmosaic/internal/lastfm"
	"github.com/fleveque/lastmosaic/internal/model"
	"github.com/fleveque/lastmosaic/internal/provider"
	"github.com/fleveque/lastmosaic/internal/render"
	"github.com/fleveque/lastmosaic/internal/service"
	"github.com/fleveque/lastmosaic/internal/storage"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// sourceFlags select where collage data comes from.
type sourceFlags struct {
	username string
	itemType string
	period   string
	grid     string
	api      string
	input    string

	cmd *cobra.Command
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	f.cmd = cmd
	cmd.Flags().StringVarP(&f.username, "username", "u", "", "Last.fm username")
	cmd.Flags().StringVarP(&f.itemType, "type", "t", string(model.TypeAlbums), "Item type: albums, artists")
	cmd.Flags().StringVarP(&f.period, "period", "p", string(model.PeriodOverall), "Period: 7day, 1month, 3month, 6month, 12month, overall")
	cmd.Flags().StringVarP(&f.grid, "grid", "g", string(model.Grid3x3), "Grid size: 3x3, 4x4, 5x5, 10x10")
	cmd.Flags().StringVar(&f.api, "api", "", "Base URL of a lastmosaic server to read data from")
	cmd.Flags().StringVar(&f.input, "input", "", "Read collage data from a JSON file instead")
}

func (f *sourceFlags) request() provider.Request {
	return provider.Request{
		Username: f.username,
		Period:   model.Period(f.period),
		Type:     model.ItemType(f.itemType),
		GridSize: model.GridSize(f.grid),
	}
}

// env is what every command needs: config, logger and the message catalog.
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	catalog *i18n.Catalog
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
		e          env
	)

	root := &cobra.Command{
		Use:          "lastmosaic",
		Short:        "Export Last.fm top albums and artists as collage images",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = os.Getenv("LASTMOSAIC_CONFIG_PATH")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			// The CLI always logs in development mode, to stderr.
			zcfg := zap.NewDevelopmentConfig()
			if !verbose {
				zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
			}
			logger, err := zcfg.Build()
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}

			catalog, err := i18n.Load()
			if err != nil {
				return fmt.Errorf("loading messages: %w", err)
			}
			e = env{cfg: cfg, logger: logger, catalog: catalog}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./config.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	root.AddCommand(exportCmd(&e), fetchCmd(&e), validateCmd(&e))
	return root
}

// signalContext is canceled on Ctrl+C so exports stop cleanly.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// newProvider picks the data source: a JSON file, a lastmosaic server, or
// Last.fm itself.
func newProvider(e *env, src *sourceFlags, locale string) (provider.CollageProvider, error) {
	if src.input != "" {
		return provider.NewFileProvider(src.input), nil
	}

	api := src.api
	if api == "" {
		api = e.cfg.Export.APIURL
	}
	if api != "" {
		return provider.NewHTTPProvider(api, locale, e.logger), nil
	}

	if e.cfg.LastFM.APIKey == "" {
		return nil, fmt.Errorf("no data source: set LASTFM_API_KEY, --api or --input")
	}
	client, err := lastfm.NewClient(lastfm.Config{
		APIKey:            e.cfg.LastFM.APIKey,
		BaseURL:           e.cfg.LastFM.BaseURL,
		Logger:            e.logger,
		RequestsPerSecond: e.cfg.LastFM.RequestsPerSecond,
		MaxRetries:        e.cfg.LastFM.MaxRetries,
	})
	if err != nil {
		return nil, err
	}
	return provider.NewLastFMProvider(client, nil, e.logger), nil
}

// loadCollage fetches data, leaving unset request fields to a file source.
func loadCollage(ctx context.Context, e *env, src *sourceFlags, locale string) (*model.CollageData, error) {
	p, err := newProvider(e, src, locale)
	if err != nil {
		return nil, err
	}
	if src.input != "" {
		return p.GetCollage(ctx, fileRequest(src))
	}
	svc := service.NewCollageService(p, nil, nil, 0, e.logger)
	return svc.GetCollage(ctx, src.request())
}

// fileRequest only constrains the flags the user actually set, so a file
// is accepted with its own period, type and grid by default.
func fileRequest(src *sourceFlags) provider.Request {
	req := provider.Request{Username: src.username}
	changed := src.cmd.Flags().Changed
	if changed("period") {
		req.Period = model.Period(src.period)
	}
	if changed("type") {
		req.Type = model.ItemType(src.itemType)
	}
	if changed("grid") {
		req.GridSize = model.GridSize(src.grid)
	}
	return req
}

func exportCmd(e *env) *cobra.Command {
	var (
		src         sourceFlags
		titles      bool
		playcount   bool
		styles      bool
		dark        bool
		locale      string
		compression string
		out         string
		keepSVG     bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a collage image and save it",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			exp := e.cfg.Export
			if !flags.Changed("titles") {
				titles = exp.ShowTitles
			}
			if !flags.Changed("playcount") {
				playcount = exp.ShowPlayCount
			}
			if !flags.Changed("styles") {
				styles = exp.ShowStyles
			}
			if !flags.Changed("dark") {
				dark = exp.DarkMode
			}
			if !flags.Changed("locale") {
				locale = exp.Locale
			}
			if !flags.Changed("compression") {
				compression = exp.Compression
			}
			if !flags.Changed("out") {
				out = e.cfg.Storage.OutputDir
			}
			if !flags.Changed("keep-svg") {
				keepSVG = exp.KeepSVG
			}
			if src.input == "" && src.username == "" {
				return errors.New(e.catalog.T(locale, "errors.usernameRequired", nil))
			}

			level, err := model.ParseCompressionLevel(compression)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			data, err := loadCollage(ctx, e, &src, locale)
			if err != nil {
				if errors.Is(err, provider.ErrUserNotFound) {
					return errors.New(e.catalog.T(locale, "errors.userNotFound", nil))
				}
				return err
			}

			opts := e.catalog.DownloadOptions(locale)
			opts.ShowTitles = titles
			opts.ShowPlayCount = playcount
			opts.ShowStyles = styles
			opts.IsDarkMode = dark
			opts.CompressionLevel = level

			host := export.NewTempHost("")
			rastOpts := []render.Option{render.WithConcurrency(exp.Concurrency)}
			if keepSVG {
				host.Retain()
				rastOpts = append(rastOpts, render.WithKeepSVG())
			}

			var saver export.Saver
			status := cmd.ErrOrStderr()
			if out == "-" {
				saver = export.WriterSaver{W: cmd.OutOrStdout()}
			} else {
				fs, err := storage.NewFileSystem(out)
				if err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
				saver = export.NewDirSaver(fs)
			}

			exporter := export.NewExporter(
				host,
				render.NewRasterizer(render.NewArtworkProcessor(), e.logger, rastOpts...),
				compress.NewCompressor(e.logger),
				progressPrinter(status),
				e.logger,
			)

			res, err := exporter.Export(ctx, *data, opts, saver)
			if err != nil {
				return err
			}
			if out != "-" {
				fmt.Fprintln(status, summary(res))
			}
			return nil
		},
	}

	src.register(cmd)
	f := cmd.Flags()
	f.BoolVar(&titles, "titles", true, "Show item names")
	f.BoolVar(&playcount, "playcount", true, "Show play counts")
	f.BoolVar(&styles, "styles", true, "Styled layout with header and footer")
	f.BoolVar(&dark, "dark", true, "Dark palette")
	f.StringVar(&locale, "locale", i18n.DefaultLocale, "Locale: en, pt-BR")
	f.StringVarP(&compression, "compression", "c", string(model.PresetNormal), "Compression: high, normal, medium, low, ultraLow, tiny")
	f.StringVarP(&out, "out", "o", ".", `Output directory, or "-" for stdout`)
	f.BoolVar(&keepSVG, "keep-svg", false, "Keep the intermediate SVG in a temp directory")
	return cmd
}

func fetchCmd(e *env) *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Print collage data as JSON (usable with export --input)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if src.input == "" && src.username == "" {
				return errors.New(e.catalog.T(e.cfg.Export.Locale, "errors.usernameRequired", nil))
			}
			ctx, cancel := signalContext()
			defer cancel()

			data, err := loadCollage(ctx, e, &src, e.cfg.Export.Locale)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), data)
		},
	}
	src.register(cmd)
	return cmd
}

func validateCmd(e *env) *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that a Last.fm user exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			locale := e.cfg.Export.Locale
			if src.username == "" {
				return errors.New(e.catalog.T(locale, "errors.usernameRequired", nil))
			}
			ctx, cancel := signalContext()
			defer cancel()

			p, err := newProvider(e, &src, locale)
			if err != nil {
				return err
			}
			err = service.NewCollageService(p, nil, nil, 0, e.logger).ValidateUser(ctx, src.username)
			switch {
			case err == nil:
				fmt.Fprintln(cmd.OutOrStdout(), doneStyle.Render("✓ "+src.username))
				return nil
			case errors.Is(err, provider.ErrUserNotFound):
				return errors.New(e.catalog.T(locale, "errors.lastfmUserNotFound", nil))
			default:
				return err
			}
		},
	}
	cmd.Flags().StringVarP(&src.username, "username", "u", "", "Last.fm username")
	cmd.Flags().StringVar(&src.api, "api", "", "Base URL of a lastmosaic server")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
