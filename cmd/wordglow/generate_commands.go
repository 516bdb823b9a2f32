package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"wordglow/internal/captions"
	"wordglow/internal/config"
	"wordglow/internal/language"
	"wordglow/internal/pipeline"
	"wordglow/internal/transcribe"
	"wordglow/internal/transcript"
)

var audioExtensions = map[string]struct{}{
	".aac":  {},
	".flac": {},
	".m4a":  {},
	".mkv":  {},
	".mp3":  {},
	".mp4":  {},
	".ogg":  {},
	".opus": {},
	".wav":  {},
	".webm": {},
}

// resolveInput expands path and checks that it names a regular file.
func resolveInput(path string) (string, error) {
	expanded, err := config.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("file does not exist: %s", expanded)
		}
		return "", fmt.Errorf("inspect file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", expanded)
	}
	return expanded, nil
}

func resolveAudio(path string) (string, error) {
	resolved, err := resolveInput(path)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(resolved))
	if _, ok := audioExtensions[ext]; !ok {
		return "", fmt.Errorf("unsupported audio extension %q", ext)
	}
	return resolved, nil
}

func resolveOutput(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	return config.ExpandPath(strings.TrimSpace(path))
}

func printResult(out io.Writer, res pipeline.Result) {
	fmt.Fprintf(out, "Wrote %s\n", res.String())
	if res.Language != "" {
		fmt.Fprintf(out, "Language: %s\n", language.DisplayName(res.Language))
	}
	if res.JSONPath != "" {
		fmt.Fprintf(out, "Transcript: %s\n", res.JSONPath)
	}
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var saveJSON bool

	cmd := &cobra.Command{
		Use:   "generate <audio>",
		Short: "Transcribe an audio file and write karaoke subtitles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			audio, err := resolveAudio(args[0])
			if err != nil {
				return err
			}
			output, err := resolveOutput(outputPath)
			if err != nil {
				return err
			}

			engine, err := transcribe.New(cfg)
			if err != nil {
				return err
			}
			p, err := pipeline.New(cfg, engine, logger)
			if err != nil {
				return err
			}
			res, err := p.Run(cmd.Context(), pipeline.Request{
				AudioPath:  audio,
				OutputPath: output,
				SaveJSON:   saveJSON || cfg.Captions.SaveJSON,
			})
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Subtitle path (default <output_dir>/<audio>.ass)")
	cmd.Flags().BoolVar(&saveJSON, "save-json", false, "Also write the word-level transcript next to the subtitle")
	return cmd
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "render <words.json>",
		Short: "Write karaoke subtitles from an existing word-level transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			input, err := resolveInput(args[0])
			if err != nil {
				return err
			}
			output, err := resolveOutput(outputPath)
			if err != nil {
				return err
			}
			if output == "" {
				output = pipeline.DefaultOutputPath(cfg.Paths.OutputDir, input)
			}

			t, err := transcript.Load(input)
			if err != nil {
				return err
			}
			p, err := pipeline.New(cfg, nil, logger)
			if err != nil {
				return err
			}
			res, err := p.RunTranscript(cmd.Context(), t, output)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Subtitle path (default <output_dir>/<input>.ass)")
	return cmd
}

func newRepairCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "repair <file.ass>",
		Short: "Rewrite the style record and wrap mode of an existing subtitle file",
		Long: "Rewrites the Default style line and the WrapStyle header of a subtitle\n" +
			"file written by a generic serializer so it matches the configured [style].",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := resolveInput(args[0])
			if err != nil {
				return err
			}
			style, err := cfg.StyleSpec()
			if err != nil {
				return err
			}
			if err := captions.Repair(path, style); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Repaired %s\n", path)
			return nil
		},
	}
}
