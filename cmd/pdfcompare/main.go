// PDFCompare — document comparison engine with optional LLM analysis.
//
// Usage:
//
//	pdfcompare serve                 # start the REST API server
//	pdfcompare compare old.pdf new.pdf
//	pdfcompare version
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/RobinCoderZhao/pdfcompare/internal/api"
	"github.com/RobinCoderZhao/pdfcompare/internal/compare"
	"github.com/RobinCoderZhao/pdfcompare/internal/extract"
	"github.com/RobinCoderZhao/pdfcompare/internal/history"
	"github.com/RobinCoderZhao/pdfcompare/internal/report"
	"github.com/RobinCoderZhao/pdfcompare/internal/user"
	"github.com/RobinCoderZhao/pdfcompare/pkg/config"
	"github.com/RobinCoderZhao/pdfcompare/pkg/llm"
	"github.com/RobinCoderZhao/pdfcompare/pkg/storage"
)

var version = "dev"

type appConfig struct {
	Port        int            `yaml:"port" env:"PORT"`
	MaxUploadMB int            `yaml:"max_upload_mb" env:"MAX_UPLOAD_MB"`
	JWTSecret   string         `yaml:"jwt_secret" env:"JWT_SECRET"`
	CORSOrigin  string         `yaml:"cors_origin" env:"CORS_ORIGIN"`
	Database    storage.Config `yaml:"database"`
	LLM         llm.Config     `yaml:"llm"`
}

func defaultAppConfig() appConfig {
	return appConfig{
		Port:        5000,
		MaxUploadMB: 50,
		JWTSecret:   "change-me-in-production",
		Database:    storage.Config{DSN: "pdfcompare.db"},
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "pdfcompare",
		Short: "Compare two documents and explain what changed",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var configPath string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := defaultAppConfig()
			if err := config.LoadOrDefault(configPath, &cfg); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if port > 0 {
				cfg.Port = port
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "pdfcompare.yaml", "path to config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

func runServe(cfg appConfig) error {
	db, err := storage.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	server := api.NewServer(user.NewStore(db), history.NewStore(db), api.Options{
		JWTSecret:   cfg.JWTSecret,
		MaxUploadMB: cfg.MaxUploadMB,
		LLM:         cfg.LLM,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: corsMiddleware(cfg.CORSOrigin, server.Routes()),
	}

	go func() {
		slog.Info("starting PDFCompare API server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	return nil
}

func compareCmd() *cobra.Command {
	var (
		outputJSON       bool
		showUnified      bool
		cardPath         string
		ignoreWhitespace bool
		ignoreCase       bool
		ignorePattern    string
		stripHeader      int
		stripFooter      int
	)

	cmd := &cobra.Command{
		Use:   "compare <file_a> <file_b>",
		Short: "Compare two documents offline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := compare.IgnoreRules{
				CollapseWhitespace: ignoreWhitespace,
				IgnoreCase:         ignoreCase,
				IgnoreRegex:        ignorePattern,
				StripHeaderFooter: compare.StripHeaderFooter{
					LinesFromTop:    stripHeader,
					LinesFromBottom: stripFooter,
				},
			}
			return runCompare(args[0], args[1], rules, outputJSON, showUnified, cardPath)
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVar(&showUnified, "unified", false, "print the unified diff instead of the report")
	cmd.Flags().StringVar(&cardPath, "card", "", "render a PNG summary card to the given path")
	cmd.Flags().BoolVarP(&ignoreWhitespace, "ignore-whitespace", "w", false, "collapse whitespace runs before diffing")
	cmd.Flags().BoolVarP(&ignoreCase, "ignore-case", "i", false, "ignore letter case")
	cmd.Flags().StringVar(&ignorePattern, "ignore-pattern", "", "drop lines fully matching this regex")
	cmd.Flags().IntVar(&stripHeader, "strip-header", 0, "strip N lines from the top of each page")
	cmd.Flags().IntVar(&stripFooter, "strip-footer", 0, "strip N lines from the bottom of each page")
	return cmd
}

func runCompare(pathA, pathB string, rules compare.IgnoreRules, outputJSON, showUnified bool, cardPath string) error {
	docA, nameA, err := loadDocument(pathA)
	if err != nil {
		return err
	}
	docB, nameB, err := loadDocument(pathB)
	if err != nil {
		return err
	}

	result, err := compare.Compare(compare.Input{
		A:     docA.Lines,
		B:     docB.Lines,
		Rules: rules,
		NameA: nameA,
		NameB: nameB,
	})
	if err != nil {
		return err
	}

	for _, warning := range result.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", warning)
	}

	if cardPath != "" {
		renderer := report.NewCardRenderer()
		if err := renderer.RenderPNG(result.Stats, nameA, nameB, cardPath); err != nil {
			return fmt.Errorf("render card: %w", err)
		}
		fmt.Fprintln(os.Stderr, "summary card written to", cardPath)
	}

	switch {
	case outputJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case showUnified:
		fmt.Println(result.Unified)
	default:
		fmt.Println(report.Generate(result.Blocks, result.Stats, nameA, nameB))
	}
	return nil
}

func loadDocument(path string) (*extract.Document, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := extract.FromBytes(path, data)
	if err != nil {
		return nil, "", fmt.Errorf("extract %s: %w", path, err)
	}
	return doc, baseName(path), nil
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pdfcompare %s\n", version)
		},
	}
}

// corsMiddleware allows a browser frontend served from another origin.
func corsMiddleware(origin string, next http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:3000"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
