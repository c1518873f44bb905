package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"execmind/internal/config"
	"execmind/internal/idea"
	"execmind/internal/logging"
	"execmind/internal/perception"
	"execmind/internal/workflow"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errQuit ends the session when input is exhausted.
var errQuit = errors.New("input closed")

// session is one interactive run: a menu loop over idea attempts.
type session struct {
	in          *bufio.Reader
	view        *view
	deps        workflow.Deps
	transcriber perception.Transcriber
}

func newSession(in io.Reader, out io.Writer, style string, deps workflow.Deps, tr perception.Transcriber) *session {
	return &session{
		in:          bufio.NewReader(in),
		view:        newView(out, style),
		deps:        deps,
		transcriber: tr,
	}
}

func runInteractive(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	// Log level follows the config file while the session is open.
	if w, err := config.NewWatcher(a.configPath, func(c *config.Config) {
		logging.SetLevel(c.Logging.Level)
		logger.Info("Config reloaded", zap.String("log_level", logging.CurrentLevel()))
	}); err == nil {
		if err := w.Start(ctx); err != nil {
			logging.BootWarn("Config watcher disabled: %v", err)
		}
		defer w.Stop()
	}

	s := newSession(cmd.InOrStdin(), cmd.OutOrStdout(), "", a.deps(), a.transcriber)
	return s.run(ctx)
}

// run shows the menu until the operator exits, input ends, or ctx is done.
func (s *session) run(ctx context.Context) error {
	s.view.welcome()
	logging.CLI("Interactive session started")
	for ctx.Err() == nil {
		s.view.menu()
		choice, err := s.choose("Choose", []string{"1", "2", "3"}, "1")
		if err != nil {
			return nil
		}

		var (
			raw    string
			source = idea.SourceText
		)
		switch choice {
		case "3":
			s.view.println(titleStyle.Render("Goodbye!"))
			logging.CLI("Session ended by operator")
			return nil
		case "1":
			if raw, err = s.ask("\nEnter your idea"); err != nil {
				return nil
			}
		case "2":
			if raw, err = s.voiceInput(ctx); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				logging.CLIError("Voice input failed: %v", err)
				s.view.failure(err)
				continue
			}
			source = idea.SourceVoice
		}

		if strings.TrimSpace(raw) == "" {
			s.view.println(errorStyle.Render("Empty input!"))
			continue
		}

		if err := s.attempt(ctx, raw, source); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			logging.CLIError("Idea attempt failed: %v", err)
			s.view.failure(err)
		}
	}
	return nil
}

func (s *session) voiceInput(ctx context.Context) (string, error) {
	if s.transcriber == nil {
		return "", errors.New("voice input is disabled (transcription.enabled is false)")
	}
	path, err := s.ask("\nPath to audio file (wav/mp3/m4a)")
	if err != nil {
		return "", err
	}
	path = strings.Trim(strings.TrimSpace(path), `"'`)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("file not found: %s", path)
	}

	s.view.muted("Transcribing...")
	text, err := s.transcriber.Transcribe(ctx, path)
	if err != nil {
		return "", err
	}
	s.view.muted("Transcribed: " + text)
	return text, nil
}

// attempt drives one idea from framing to an optional evaluation. A refine
// decision after research restarts framing with the re-entered idea.
func (s *session) attempt(ctx context.Context, raw string, source idea.Source) error {
	reqID := logging.NewRequestID()
	deps := s.deps
	deps.Logger = logging.WithRequestID(logging.CategoryWorkflow, reqID)
	cli := logging.WithRequestID(logging.CategoryCLI, reqID)
	cli.Info("Idea attempt started: source=%s len=%d", source, len(raw))

	for {
		f := workflow.NewFraming(deps, raw)
		confirmed, err := s.frame(ctx, f)
		if err != nil || !confirmed {
			return err
		}

		s.view.println("\n" + headingStyle.Foreground(colorBlue).Render("Checking history and web..."))
		report, err := workflow.NewResearcher(deps).Investigate(ctx, researchSubject(f))
		if err != nil {
			return err
		}
		s.view.research(report)

		s.view.println("\n" + headingStyle.Render("How do you want to proceed?"))
		s.view.println("1. Pursue and structure this idea")
		s.view.println("2. Refine it based on the research")
		s.view.println("3. Drop idea")
		decision, err := s.choose("Choose", []string{"1", "2", "3"}, "1")
		if err != nil {
			return err
		}
		switch decision {
		case "3":
			s.view.muted("Idea dropped.")
			cli.Info("Idea dropped after research")
			return nil
		case "2":
			refined, err := s.ask("\nRe-enter your refined idea")
			if err != nil {
				return err
			}
			if strings.TrimSpace(refined) == "" {
				s.view.muted("Nothing entered; back to the menu.")
				return nil
			}
			raw = refined
			cli.Info("Idea re-entered after research")
			continue
		}

		s.view.muted("Structuring and saving...")
		created, err := workflow.NewStructurer(deps).Structure(ctx, raw, source)
		if err != nil {
			return err
		}
		s.view.idea(created)

		ok, err := s.confirm("\nEvaluate this idea?", true)
		if err != nil || !ok {
			return err
		}
		s.view.muted("Evaluating feasibility and market fit...")
		eval, err := workflow.NewScorer(deps).Evaluate(ctx, created)
		if err != nil {
			return err
		}
		s.view.evaluation(eval)
		cli.Info("Idea %d evaluated: %.2f %s", created.ID, eval.FinalScore, eval.Verdict)
		return nil
	}
}

// researchSubject is the confirmed restatement, or the accumulated context
// when the model left the restatement out.
func researchSubject(f *workflow.Framing) string {
	if strings.TrimSpace(f.Restatement()) == "" {
		return f.Context()
	}
	return f.Restatement()
}

// frame runs the confirmation loop. It reports whether the idea was confirmed.
func (s *session) frame(ctx context.Context, f *workflow.Framing) (bool, error) {
	for {
		s.view.muted("Framing your idea...")
		if err := f.Draft(ctx); err != nil {
			return false, err
		}
		s.view.interpretation(f.Restatement(), f.Question())

		s.view.println("\n" + headingStyle.Render("Is this what you meant?"))
		s.view.println("1. Yes, proceed")
		s.view.println("2. No, let me refine it")
		s.view.println("3. Trash idea")
		choice, err := s.choose("Choose", []string{"1", "2", "3"}, "1")
		if err != nil {
			return false, err
		}

		switch choice {
		case "1":
			return true, f.Accept()
		case "3":
			s.view.muted("Idea trashed.")
			return false, f.Trash()
		}

		text, err := s.ask("\nWhat would you like to add or clarify?")
		if err != nil {
			return false, err
		}
		if strings.EqualFold(strings.TrimSpace(text), "exit") {
			s.view.muted("Idea trashed.")
			return false, f.Trash()
		}
		if err := f.Refine(text); err != nil {
			return false, err
		}
	}
}

func (s *session) ask(prompt string) (string, error) {
	s.view.printf("%s: ", headingStyle.Render(prompt))
	line, err := s.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", errQuit
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// choose asks until the answer is one of choices. Empty picks def.
func (s *session) choose(prompt string, choices []string, def string) (string, error) {
	for {
		answer, err := s.ask(fmt.Sprintf("%s [%s] (%s)", prompt, strings.Join(choices, "/"), def))
		if err != nil {
			return "", err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return def, nil
		}
		for _, c := range choices {
			if answer == c {
				return c, nil
			}
		}
		s.view.println(errorStyle.Render("Please select one of the available options"))
	}
}

func (s *session) confirm(prompt string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		answer, err := s.ask(fmt.Sprintf("%s [%s]", prompt, hint))
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		s.view.println(errorStyle.Render("Please enter y or n"))
	}
}
