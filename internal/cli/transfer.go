package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dell121212/laberaer/internal/adapters/transfer"
	"github.com/dell121212/laberaer/internal/spreadsheet"
	"github.com/dell121212/laberaer/pkg/domain"
)

const entityArgs = "strains|members|duty|media|theses"

func exportCmd(s *session) *cobra.Command {
	var format, outDir string
	cmd := &cobra.Command{
		Use:   "export <" + entityArgs + ">",
		Short: "Export every record of an entity type to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := domain.ParseEntityType(args[0])
			if err != nil {
				return err
			}
			art, err := s.App().Transfer.Export(cmd.Context(), entity, spreadsheet.Format(format))
			if err != nil {
				return err
			}
			return reportArtifact(cmd, s, art, outDir)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(spreadsheet.FormatXLSX), "File format: xlsx or csv")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Also copy the file into this directory")
	return cmd
}

func templateCmd(s *session) *cobra.Command {
	var format, outDir string
	cmd := &cobra.Command{
		Use:   "template <" + entityArgs + ">",
		Short: "Write the import template of an entity type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := domain.ParseEntityType(args[0])
			if err != nil {
				return err
			}
			art, err := s.App().Transfer.Template(cmd.Context(), entity, spreadsheet.Format(format))
			if err != nil {
				return err
			}
			return reportArtifact(cmd, s, art, outDir)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(spreadsheet.FormatXLSX), "File format: xlsx or csv")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Also copy the file into this directory")
	return cmd
}

func reportArtifact(cmd *cobra.Command, s *session, art transfer.Artifact, outDir string) error {
	out := cmd.OutOrStdout()
	fprintf(out, "%s %s (%d rows, %d bytes)\n", okMark("wrote"), art.Key, art.Rows, art.SizeBytes)
	if art.URL != "" {
		fprintf(out, "  url: %s\n", art.URL)
	}
	if outDir == "" {
		return nil
	}
	_, payload, err := s.App().Transfer.Fetch(cmd.Context(), art.Key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(outDir, filepath.Base(art.Key))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("copy %s: %w", art.Key, err)
	}
	fprintf(out, "  copied to %s\n", path)
	return nil
}

func importCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "import <" + entityArgs + "> <file.xlsx|file.csv>",
		Short: "Create records from a spreadsheet, one per valid row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := domain.ParseEntityType(args[0])
			if err != nil {
				return err
			}
			payload, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			res, err := s.App().Transfer.Import(cmd.Context(), entity, filepath.Base(args[1]), payload)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fprintf(out, "%s %d of %d rows\n", okMark("imported"), res.Created, res.Total)
			for _, re := range res.Errors {
				fprintf(out, "  %s row %d: %s\n", errMark("rejected"), re.Row, re.Reason)
			}
			return nil
		},
	}
}

func filesCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "files [prefix]",
		Short: "List exported spreadsheets and templates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var prefix string
			if len(args) == 1 {
				prefix = args[0]
			}
			infos, err := s.App().Transfer.Artifacts(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fprintf(w, "KEY\tSIZE\tROWS\tMODIFIED\n")
			for _, info := range infos {
				fprintf(w, "%s\t%d\t%s\t%s\n", info.Key, info.Size, info.Metadata["rows"], timestamp(info.LastModified))
			}
			return w.Flush()
		},
	}
}
