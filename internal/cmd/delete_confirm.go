package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
)

type autoApproveKey struct{}

// SetDeleteAutoApprove records the --yes flag on the command context.
func SetDeleteAutoApprove(cmd *cobra.Command, approved bool) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, autoApproveKey{}, approved))
}

// DeleteAutoApproveEnabled reports whether --yes was given.
func DeleteAutoApproveEnabled(helper Helper) bool {
	if helper == nil || helper.GetCmd() == nil || helper.GetCmd().Context() == nil {
		return false
	}
	approved, _ := helper.GetCmd().Context().Value(autoApproveKey{}).(bool)
	return approved
}

// ConfirmDelete describes what is about to be deleted and waits for the user
// to type "yes". Any other answer, end of input, an interrupt or a cancelled
// context aborts with "delete cancelled".
func ConfirmDelete(helper Helper, description string, warnings ...string) error {
	if DeleteAutoApproveEnabled(helper) {
		return nil
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "\nYou are about to delete %s\n", description)
	for _, w := range warnings {
		if strings.TrimSpace(w) != "" {
			prompt.WriteString(w + "\n")
		}
	}
	prompt.WriteString("\nDo you want to continue? Type 'yes' to confirm: ")

	streams := helper.GetStreams()
	if _, err := io.WriteString(streams.Out, prompt.String()); err != nil {
		return err
	}

	in, closeIn := confirmInput(streams.In)
	defer closeIn()

	ctx := helper.GetContext()
	if ctx == nil {
		ctx = context.Background()
	}
	if !awaitYes(ctx, in) {
		return PrepareExecutionErrorMsg(helper, "delete cancelled")
	}
	return nil
}

// confirmInput prefers the controlling terminal when stdin is the process
// stdin, so piped input does not answer the prompt.
func confirmInput(in io.Reader) (io.Reader, func()) {
	f, ok := in.(*os.File)
	if !ok || f.Fd() != os.Stdin.Fd() {
		return in, func() {}
	}
	tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
	if err != nil {
		return in, func() {}
	}
	return tty, func() { _ = tty.Close() }
}

func awaitYes(ctx context.Context, in io.Reader) bool {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	answer := make(chan string, 1)
	go func() {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			close(answer)
			return
		}
		answer <- line
	}()

	select {
	case <-ctx.Done():
		return false
	case line := <-answer:
		return strings.EqualFold(strings.TrimSpace(line), "yes")
	}
}
