package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	apperrors "github.com/daffodeal/marketplace/pkg/errors"

	"github.com/daffodeal/marketplace/internal/domain"
	"github.com/daffodeal/marketplace/internal/ingest"
	"github.com/daffodeal/marketplace/internal/service"
)

func newProductsCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Import a product file into a shop",
		Example: "  importer products --shop 5a71c0de-0000-4000-8000-000000000002 --file catalog.csv\n" +
			"  importer products --shop 5a71c0de-0000-4000-8000-000000000002 --file catalog.xlsx --dry-run",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProducts(cmd, open)
		},
	}
	cmd.Flags().String("shop", "", "Owning shop id")
	cmd.Flags().String("file", "", "Path to a .csv or .xlsx product file")
	cmd.Flags().Bool("dry-run", false, "Parse and validate only, printing the products as JSON")
	return cmd
}

func runProducts(cmd *cobra.Command, open opener) error {
	shopID, err := requireFlag(cmd, "shop")
	if err != nil {
		return err
	}
	path, err := requireFlag(cmd, "file")
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	ctx := cmd.Context()
	log := commandLogger(cmd)
	svc, closeFn, err := open(ctx, log)
	if err != nil {
		return err
	}
	defer closeFn()

	var products []*domain.Product
	if dryRun {
		products, err = prepareFile(cmd, svc, shopID, path)
	} else {
		products, err = svc.ImportFile(ctx, shopID, path)
	}
	if err != nil {
		printRowErrors(cmd.ErrOrStderr(), err)
		return err
	}

	out := cmd.OutOrStdout()
	if dryRun {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(products)
	}
	fmt.Fprintf(out, "imported %d products into shop %s\n", len(products), shopID)
	for _, p := range products {
		fmt.Fprintf(out, "  %s  %s\n", p.ID, p.Name)
	}
	return nil
}

func prepareFile(cmd *cobra.Command, svc *service.ImportService, shopID, path string) ([]*domain.Product, error) {
	f, err := os.Open(path) // #nosec G304 -- path is an operator supplied flag
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()
	return svc.Prepare(cmd.Context(), shopID, filepath.Base(path), f)
}

func printRowErrors(w io.Writer, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return
	}
	rows, ok := appErr.Details.([]ingest.RowError)
	if !ok {
		return
	}
	for _, re := range rows {
		fmt.Fprintln(w, re.Error())
	}
}
