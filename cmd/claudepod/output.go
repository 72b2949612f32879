package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/13rac1/claudepod/internal/markdown"
	"github.com/13rac1/claudepod/supervisor"
)

var outputCmd = &cobra.Command{
	Use:   "output <job-id>",
	Short: "Read a job's captured output",
	Args:  cobra.ExactArgs(1),
	RunE:  runOutput,
}

var (
	outputSession string
	outputOffset  int64
	outputLimit   int64
	outputRender  bool
)

func init() {
	outputCmd.Flags().StringVar(&outputSession, "session", "", "session key owning the job (searched when omitted)")
	outputCmd.Flags().Int64Var(&outputOffset, "offset", 0, "byte offset to read from")
	outputCmd.Flags().Int64Var(&outputLimit, "limit", 0, "maximum bytes to read (default 64 KiB)")
	outputCmd.Flags().BoolVar(&outputRender, "render", false, "render the output as markdown")
	rootCmd.AddCommand(outputCmd)
}

func runOutput(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}

	result, err := a.supervisor.Output(cmd.Context(), args[0], outputSession, outputOffset, outputLimit)
	if errors.Is(err, supervisor.ErrJobNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "job %s not found\n", args[0])
		return nil
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, dimStyle.Render(result.Header()))

	if outputRender {
		fmt.Fprintln(out, markdown.Render(terminalWidth(), string(result.Content)))
		return nil
	}
	_, err = out.Write(result.Content)
	return err
}
