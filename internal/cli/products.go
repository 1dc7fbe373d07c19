package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jafarshop/productvariant/internal/domain"
)

const maxConcurrentClears = 4

func newSchemaCommand(factory ServiceFactory) *cobra.Command {
	return &cobra.Command{
		Use:     "schema <collection-handle>",
		GroupID: groupProducts,
		Short:   "Print the required fields and choices for a collection",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, factory, func(ctx context.Context, svc *Services) error {
				schema, err := svc.Schemas.ResolveSchema(ctx, strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				return writeJSON(cmd, schema)
			})
		},
	}
}

func newProductCommand(factory ServiceFactory) *cobra.Command {
	return &cobra.Command{
		Use:     "product <product-id>",
		GroupID: groupProducts,
		Short:   "Print a product's collection and current variant values",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := domain.ProductGID(args[0])
			if err != nil {
				return err
			}
			return withServices(cmd, factory, func(ctx context.Context, svc *Services) error {
				snapshot, err := svc.Reader.ReadProduct(ctx, productID)
				if err != nil {
					return err
				}
				return writeJSON(cmd, snapshot)
			})
		},
	}
}

func newSaveCommand(factory ServiceFactory) *cobra.Command {
	var (
		values           []string
		collectionHandle string
		collectionID     string
	)

	cmd := &cobra.Command{
		Use:     "save <product-id>",
		GroupID: groupProducts,
		Short:   "Validate, check for duplicates and write variant values",
		Long: `save runs the full save flow for one product. The collection is always read from the
product; --collection-handle and --collection-id only assert what it should be.
The command exits non-zero when the outcome is anything other than succeeded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := domain.ProductGID(args[0])
			if err != nil {
				return err
			}
			parsed, err := parseValues(values)
			if err != nil {
				return err
			}
			return withServices(cmd, factory, func(ctx context.Context, svc *Services) error {
				snapshot, err := svc.Reader.ReadProduct(ctx, productID)
				if err != nil {
					return err
				}
				req, mismatch := snapshot.SaveRequestFor(collectionHandle, collectionID, parsed)
				if mismatch != "" {
					return fmt.Errorf("save %s: %s", productID, mismatch)
				}

				result := svc.Saver.Save(ctx, req)
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
				if result.Outcome != domain.OutcomeSucceeded {
					return fmt.Errorf("save %s: %s", productID, result.Outcome)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&values, "value", nil, `Field value as "Label=Value" (repeatable)`)
	cmd.Flags().StringVar(&collectionHandle, "collection-handle", "", "Expected collection handle; the save is refused when the product is elsewhere")
	cmd.Flags().StringVar(&collectionID, "collection-id", "", "Expected collection GID; the save is refused when the product is elsewhere")

	return cmd
}

// parseValues turns repeated "Label=Value" flags into a value map; the first '=' splits
func parseValues(raw []string) (map[string]string, error) {
	values := make(map[string]string, len(raw))
	for _, item := range raw {
		label, value, ok := strings.Cut(item, "=")
		label = strings.TrimSpace(label)
		if !ok || label == "" {
			return nil, fmt.Errorf("invalid --value %q: expected Label=Value", item)
		}
		if _, dup := values[label]; dup {
			return nil, fmt.Errorf("invalid --value %q: %s given twice", item, label)
		}
		values[label] = strings.TrimSpace(value)
	}
	return values, nil
}

func newClearCommand(factory ServiceFactory) *cobra.Command {
	return &cobra.Command{
		Use:     "clear <product-id>...",
		GroupID: groupProducts,
		Short:   "Clear variant metafields the way the products/create webhook does",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productIDs := make([]string, 0, len(args))
			for _, arg := range args {
				productID, err := domain.ProductGID(arg)
				if err != nil {
					return err
				}
				productIDs = append(productIDs, productID)
			}
			return withServices(cmd, factory, func(ctx context.Context, svc *Services) error {
				results, err := clearProducts(ctx, svc.Cleaner, productIDs)
				if err != nil {
					return err
				}
				return writeJSON(cmd, results)
			})
		},
	}
}

// clearProducts runs ClearOnCreate for each product, at most maxConcurrentClears at a time.
// Results keep the input order.
func clearProducts(ctx context.Context, cleaner ProductCleaner, productIDs []string) ([]*domain.ClearResult, error) {
	results := make([]*domain.ClearResult, len(productIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentClears)

	for i, productID := range productIDs {
		g.Go(func() error {
			result, err := cleaner.ClearOnCreate(ctx, productID)
			if err != nil {
				return fmt.Errorf("clear %s: %w", productID, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func newCollectionsCommand(factory ServiceFactory) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:     "collections",
		GroupID: groupProducts,
		Short:   "List store collections and whether a collection rule covers them",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, factory, func(ctx context.Context, svc *Services) error {
				collections, err := svc.Collections.ListCollections(ctx, strings.TrimSpace(search))
				if err != nil {
					return err
				}
				return writeJSON(cmd, collections)
			})
		},
	}

	cmd.Flags().StringVar(&search, "query", "", `Shopify collection search, e.g. "title:Rings"`)

	return cmd
}
