package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"execmind/internal/config"
	"execmind/internal/store"
	"execmind/internal/workflow"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid idea id %q", arg)
	}
	return id, nil
}

// commandContext is cancelled on interrupt. Per-call deadlines live in the
// gateway clients (llm.timeout, --timeout).
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	ideas, err := a.store.ListRecentIdeas(ctx, limit)
	if err != nil {
		return err
	}

	v := newView(cmd.OutOrStdout(), "notty")
	if len(ideas) == 0 {
		v.muted("No ideas yet. Run execmind to capture one.")
		return nil
	}
	v.printf("%5s  %-16s  %-5s  %s\n", "ID", "CREATED", "SRC", "SOLUTION")
	for _, it := range ideas {
		v.ideaRow(it)
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	it, err := a.store.GetIdea(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no idea with id %d", id)
	}
	if err != nil {
		return err
	}
	evals, err := a.store.ListEvaluations(ctx, id)
	if err != nil {
		return err
	}

	v := newView(cmd.OutOrStdout(), "notty")
	v.idea(it)
	v.muted("Raw input: " + it.RawInput)
	if len(evals) == 0 {
		v.muted("Not evaluated yet. Run: execmind evaluate " + args[0])
		return nil
	}
	for i := range evals {
		v.muted(fmt.Sprintf("\nEvaluation #%d (%s)", evals[i].ID, evals[i].CreatedAt.Local().Format("2006-01-02 15:04")))
		v.evaluation(&evals[i])
	}
	return nil
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	it, err := a.store.GetIdea(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no idea with id %d", id)
	}
	if err != nil {
		return err
	}
	eval, err := workflow.NewScorer(a.deps()).Evaluate(ctx, it)
	if err != nil {
		return err
	}
	logger.Info("Idea evaluated", zap.Int64("idea", id), zap.Float64("score", eval.FinalScore))

	v := newView(cmd.OutOrStdout(), "")
	v.idea(it)
	v.evaluation(eval)
	return nil
}

func runTraces(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	traces, err := a.store.ListTraces(ctx, limit)
	if err != nil {
		return err
	}
	v := newView(cmd.OutOrStdout(), "notty")
	for _, t := range traces {
		status := "ok"
		if t.ErrorMessage != "" {
			status = "error: " + t.ErrorMessage
		}
		v.printf("%5d  %s  %-11s  %-9s  %6dms  %s\n", t.ID, t.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			t.Step, t.Provider, t.Duration.Milliseconds(), status)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	ws, err := resolveWorkspace()
	if err != nil {
		return err
	}
	path := resolveConfigPath(ws)
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
