package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tppkitchen/backoffice/internal/domain"
	"github.com/tppkitchen/backoffice/internal/store"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// Analyzer defines the dependency required to run the analyze command.
type Analyzer interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error)
}

// Server defines the dependency required to run the serve command.
type Server interface {
	Run(ctx context.Context, addr string) error
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Analyzer       Analyzer
	Server         Server
	Recipes        store.RecipeStore // nil when the store is disabled
	Args           Arguments
	DefaultAddress string
	Version        string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "backoffice",
		Short: "Recipe nutrition estimation service",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(serveCommand(deps.Server, deps.DefaultAddress))
	root.AddCommand(analyzeCommand(deps.Analyzer, deps.Recipes))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func serveCommand(server Server, defaultAddress string) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if server == nil {
				return fmt.Errorf("server not configured")
			}
			return server.Run(cmd.Context(), address)
		},
	}

	if defaultAddress == "" {
		defaultAddress = ":8080"
	}
	cmd.Flags().StringVar(&address, "address", defaultAddress, "Listen address for the HTTP server")

	return cmd
}

// analyzeInput is the JSON shape accepted by --file. It matches the
// HTTP analyze endpoint's request body.
type analyzeInput struct {
	Title       string                  `json:"title"`
	Servings    int                     `json:"servings"`
	Ingredients []domain.IngredientLine `json:"ingredients"`
}

func analyzeCommand(analyzer Analyzer, recipes store.RecipeStore) *cobra.Command {
	var filePath string
	var recipeID int64
	var title string
	var servings int

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Estimate per-serving nutrition for a recipe",
		RunE: func(cmd *cobra.Command, args []string) error {
			if analyzer == nil {
				return fmt.Errorf("no provider credentials configured")
			}

			req, err := resolveAnalyzeRequest(cmd.Context(), recipes, filePath, recipeID)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("title") {
				req.Title = title
			}
			if cmd.Flags().Changed("servings") {
				req.Servings = servings
			}

			result, err := analyzer.Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "Path to a recipe JSON file ('-' for stdin)")
	cmd.Flags().Int64Var(&recipeID, "recipe-id", 0, "Analyze a recipe already in the store")
	cmd.Flags().StringVar(&title, "title", "", "Recipe title override")
	cmd.Flags().IntVar(&servings, "servings", 0, "Servings override")

	return cmd
}

// resolveAnalyzeRequest loads the recipe either from a JSON file or
// from the store, depending on which flag was given.
func resolveAnalyzeRequest(ctx context.Context, recipes store.RecipeStore, filePath string, recipeID int64) (domain.AnalysisRequest, error) {
	switch {
	case filePath != "" && recipeID != 0:
		return domain.AnalysisRequest{}, fmt.Errorf("--file and --recipe-id are mutually exclusive")

	case recipeID != 0:
		if recipes == nil {
			return domain.AnalysisRequest{}, fmt.Errorf("recipe store disabled; cannot use --recipe-id")
		}
		recipe, err := recipes.GetRecipe(ctx, recipeID)
		if err != nil {
			return domain.AnalysisRequest{}, fmt.Errorf("load recipe %d: %w", recipeID, err)
		}
		return domain.AnalysisRequest{
			Title:       recipe.Title,
			Servings:    recipe.Servings,
			Ingredients: recipe.Ingredients,
		}, nil

	case filePath != "":
		var reader io.Reader = os.Stdin
		if filePath != "-" {
			f, err := os.Open(filePath)
			if err != nil {
				return domain.AnalysisRequest{}, fmt.Errorf("open recipe file: %w", err)
			}
			defer f.Close()
			reader = f
		}

		var input analyzeInput
		if err := json.NewDecoder(reader).Decode(&input); err != nil {
			return domain.AnalysisRequest{}, fmt.Errorf("parse recipe file: %w", err)
		}
		return domain.AnalysisRequest{
			Title:       input.Title,
			Servings:    input.Servings,
			Ingredients: input.Ingredients,
		}, nil

	default:
		return domain.AnalysisRequest{}, fmt.Errorf("recipe not specified; pass --file or --recipe-id")
	}
}
