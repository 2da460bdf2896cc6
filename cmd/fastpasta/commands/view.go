package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/fastpasta/internal/logger"
	"github.com/marmos91/fastpasta/internal/scanner"
	"github.com/marmos91/fastpasta/internal/seekidx"
	"github.com/marmos91/fastpasta/internal/view"
	"github.com/marmos91/fastpasta/pkg/config"
)

var viewCmd = &cobra.Command{
	Use:   "view <input>",
	Short: "Print a word-by-word listing of RDHs and protocol words",
	Long: `view decodes the stream the same way check does but skips the
validation layers, printing one line per RDH/word instead (spec §6's
"view" mode). Every listed RDH's byte offset is recorded in a seek index
(internal/seekidx) keyed by link and sequence number; view itself always
reads the input from byte zero and does not look offsets up in the index.`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	ctx := cmd.Context()

	reader, closer, err := scanner.OpenInput(ctx, args[0], s3Options(cfg))
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer closer.Close()

	idx, err := seekidx.Open(cfg.Decode.SeekIndexPath)
	if err != nil {
		return fmt.Errorf("open seek index: %w", err)
	}
	defer idx.Close()

	sc := scanner.New(reader, scanner.Options{
		Filter:      cfg.Decode.Filter.ToScannerTarget(),
		SkipPayload: cfg.Decode.SkipPayload,
	})

	seq := make(map[uint8]uint64)
	onWarning := func(msg string) {
		logger.Warn("view decode warning", "detail", msg)
	}

	for {
		batch, err := sc.NextBatch()
		for _, c := range batch.CDPs {
			linkID := c.RDH.LinkID
			if recErr := idx.Record(linkID, seq[linkID], c.Offset); recErr != nil {
				logger.Warn("seek index record failed", "link_id", linkID, "error", recErr)
			}
			seq[linkID]++
		}
		if rerr := view.HBFView(os.Stdout, batch, onWarning); rerr != nil {
			return fmt.Errorf("render view: %w", rerr)
		}
		if err != nil {
			break
		}
	}
	return nil
}
