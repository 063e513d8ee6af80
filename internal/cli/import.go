package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sunrise-events/sunrise/internal/audit"
	"github.com/sunrise-events/sunrise/internal/importers"
)

type importOptions struct {
	userID   uint
	file     string
	category string
	strict   bool
}

func newImportCommand(a *app) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import contacts from a vCard or CSV file",
		Example: `  sunrise import --user 1 --file contacts.vcf
  sunrise import --user 1 --file google.csv --category friends --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd, opts)
		},
	}

	cmd.Flags().UintVar(&opts.userID, "user", 0, "ID of the user receiving the contacts (required)")
	cmd.Flags().StringVar(&opts.file, "file", "", "path to a .vcf or .csv file (required)")
	cmd.Flags().StringVar(&opts.category, "category", "", "category for contacts that do not carry one")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "write all contacts in one transaction, nothing is stored on failure")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (a *app) runImport(cmd *cobra.Command, opts importOptions) error {
	if opts.userID == 0 {
		return fmt.Errorf("--user must be a positive user ID")
	}

	content, err := os.ReadFile(opts.file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", opts.file, err)
	}

	services, closeFn, err := a.openServices()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := cmd.Context()
	if _, err := services.Users.GetUserByID(ctx, opts.userID); err != nil {
		return fmt.Errorf("user %d: %w", opts.userID, err)
	}

	filename := filepath.Base(opts.file)
	result, err := services.Pipeline.Import(ctx, importers.ImportRequest{
		UserID:          opts.userID,
		Filename:        filename,
		Content:         string(content),
		DefaultCategory: opts.category,
		Strict:          opts.strict,
	})
	services.Audit.LogImport(opts.userID, audit.ImportRecord{
		Filename:     filename,
		Format:       string(result.Format),
		Total:        result.Total,
		Valid:        result.Valid,
		Duplicates:   result.Duplicates,
		Inserted:     result.Inserted,
		FailedChunks: result.FailedChunks,
		UserAgent:    "sunrise-cli",
		Rejected:     importers.IsRejection(err),
		Err:          err,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %d contacts from %s (%s)\n", result.Inserted, filename, result.Format)
	fmt.Fprintf(out, "  parsed:     %d\n", result.Total)
	fmt.Fprintf(out, "  with email: %d\n", result.Valid)
	fmt.Fprintf(out, "  duplicates: %d\n", result.Duplicates)
	fmt.Fprintf(out, "  skipped:    %d\n", result.Skipped())
	if len(result.FailedChunks) > 0 {
		fmt.Fprintf(out, "  failed chunks: %v\n", result.FailedChunks)
	}
	return nil
}
