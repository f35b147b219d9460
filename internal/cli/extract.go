package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ppiankov/inmueble/internal/model"
)

var (
	extractTitle    string
	extractPrice    string
	extractLocation string
	extractID       string
	extractFallback bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [description|-]",
	Short: "Extract one listing and print the classified record",
	Long: `Extract runs the full pipeline over a single listing and prints the
resulting record as JSON. Use "-" to read the description from stdin.

Example:
  inmueble extract "Casa en venta, 3 recámaras, 2 baños" --price '$1,200,000'
  cat listing.txt | inmueble extract - --title "Casa en Mérida"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractTitle, "title", "", "listing title")
	extractCmd.Flags().StringVar(&extractPrice, "price", "", "raw price (e.g. '$1,200,000', '45 mil')")
	extractCmd.Flags().StringVar(&extractLocation, "location", "", "raw location ('Colonia, Ciudad, Estado')")
	extractCmd.Flags().StringVar(&extractID, "id", "cli", "listing id")
	extractCmd.Flags().BoolVar(&extractFallback, "fallback", false, "enable the inference fallback")
}

func runExtract(cmd *cobra.Command, args []string) (err error) {
	description, err := readDescription(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Fallback.Enabled = cfg.Fallback.Enabled || extractFallback
	cfg.Metrics.Sink = "none"

	sess, err := openSession(cfg, uuid.NewString())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sess.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	res, err := sess.newPipeline(cfg).Process(context.Background(), model.RawRecord{
		ID:          extractID,
		Title:       extractTitle,
		Description: description,
		Price:       extractPrice,
		Location:    extractLocation,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// readDescription takes the description from the argument, or from stdin
// when the argument is "-"
func readDescription(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 {
		if extractTitle == "" {
			return "", fmt.Errorf("a description or --title is required")
		}
		return "", nil
	}
	if args[0] != "-" {
		return args[0], nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

