package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jafarshop/productvariant/internal/domain"
	"github.com/jafarshop/productvariant/internal/service"
)

var (
	Version = "dev"
	Commit  = "none"
)

const (
	groupProducts = "products"
	groupUtility  = "utility"
)

type SchemaResolver interface {
	ResolveSchema(ctx context.Context, handle string) (*domain.Schema, error)
}

type ProductReader interface {
	ReadProduct(ctx context.Context, productID string) (*domain.ProductSnapshot, error)
}

type VariantSaver interface {
	Save(ctx context.Context, req domain.SaveRequest) domain.SaveResult
}

type ProductCleaner interface {
	ClearOnCreate(ctx context.Context, productID string) (*domain.ClearResult, error)
}

type CollectionLister interface {
	ListCollections(ctx context.Context, search string) ([]domain.CollectionSummary, error)
}

type AccessChecker interface {
	CheckScopes(ctx context.Context) (*service.ScopeReport, error)
}

// Services are the Shopify-backed operations the product commands run against
type Services struct {
	Schemas     SchemaResolver
	Reader      ProductReader
	Saver       VariantSaver
	Cleaner     ProductCleaner
	Collections CollectionLister
	Access      AccessChecker
}

// ServiceFactory builds Services on first use; the returned func releases them
type ServiceFactory func(ctx context.Context) (*Services, func() error, error)

// NewRootCommand builds variantctl. Commands that talk to Shopify call factory lazily,
// so hash-key and version work without Shopify credentials.
func NewRootCommand(factory ServiceFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "variantctl",
		Short: "Inspect and edit product variant metafields from the terminal",
		Long: `variantctl runs the same schema, read, save and clear operations as the HTTP server,
directly against the Shopify Admin API configured in the environment.`,
		Example: `  # Show the fields and choices for a collection
  variantctl schema wedding-rings

  # Assign variant values to a product
  variantctl save 7410 --value "Group Name=Classic" --value "Style=Solitaire" --value "Metal=Gold"

  # Clear variant metafields on several freshly created products
  variantctl clear 7410 7411 7412`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.AddGroup(&cobra.Group{ID: groupProducts, Title: "Product Commands:"})
	cmd.AddGroup(&cobra.Group{ID: groupUtility, Title: "Utility Commands:"})
	cmd.SetHelpCommandGroupID(groupUtility)
	cmd.SetCompletionCommandGroupID(groupUtility)

	cmd.AddCommand(newCollectionsCommand(factory))
	cmd.AddCommand(newSchemaCommand(factory))
	cmd.AddCommand(newProductCommand(factory))
	cmd.AddCommand(newSaveCommand(factory))
	cmd.AddCommand(newClearCommand(factory))
	cmd.AddCommand(newCheckAccessCommand(factory))
	cmd.AddCommand(newHashKeyCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// withServices builds the services, runs fn and releases them
func withServices(cmd *cobra.Command, factory ServiceFactory, fn func(ctx context.Context, svc *Services) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, closeFn, err := factory(ctx)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}
	return fn(ctx, svc)
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		GroupID: groupUtility,
		Short:   "Print the variantctl version",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), formatVersion())
			return nil
		},
	}
}

func formatVersion() string {
	version := strings.TrimSpace(Version)
	if version == "" {
		version = "dev"
	}
	commit := strings.TrimSpace(Commit)
	if commit == "" {
		commit = "none"
	}
	return fmt.Sprintf("variantctl %s (%s) %s", version, commit, runtime.Version())
}
