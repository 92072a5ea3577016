package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/LiXizhi/nplmerge/codemodel"
	"github.com/LiXizhi/nplmerge/document"
	"github.com/LiXizhi/nplmerge/internal/diffview"
	"github.com/LiXizhi/nplmerge/internal/review"
	"github.com/LiXizhi/nplmerge/merge"
	"github.com/LiXizhi/nplmerge/provider"
	"github.com/LiXizhi/nplmerge/script"
)

var (
	errEditsFailed  = errors.New("some edits failed")
	errNotTerminal  = errors.New("--review needs an interactive terminal")
	errReviewDenied = errors.New("changes abandoned in review")
)

type applyOptions struct {
	target string
	dryRun bool
	review bool
	strict bool
}

// isTerminal is replaced in tests.
var isTerminal = func() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func newApplyCmd(a *app) *cobra.Command {
	var o applyOptions
	cmd := &cobra.Command{
		Use:   "apply SCRIPT",
		Short: "Run an edit script against its target file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.apply(cmd, args[0], o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.target, "target", "", "file to edit (overrides the script's target)")
	f.BoolVar(&o.dryRun, "dry-run", false, "print the diff without writing")
	f.BoolVar(&o.review, "review", false, "review the diff interactively before writing")
	f.BoolVar(&o.strict, "strict", false, "write nothing if any edit fails")
	return cmd
}

func (a *app) apply(cmd *cobra.Command, scriptPath string, o applyOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	sc, err := script.Load(a.fs, scriptPath)
	if err != nil {
		return err
	}
	target := sc.Target
	if o.target != "" {
		target = o.target
	}
	if o.review && !isTerminal() {
		return errNotTerminal
	}

	opts := []provider.Option{
		provider.WithFs(a.fs),
		provider.WithLocator(codemodel.NewParser(codemodel.WithLogger(a.logger))),
		provider.WithLogger(a.logger),
		provider.WithLineEnding(a.cfg.LineEnding()),
	}
	if a.cfg.Watch {
		w, err := provider.NewWatcher(a.logger)
		if err != nil {
			return err
		}
		defer w.Close()
		w.Start(ctx)
		opts = append(opts, provider.WithWatcher(w))
	}

	sess, err := provider.New(opts...).Open(ctx, target)
	if err != nil {
		return err
	}

	rep := sc.Run(ctx, sess)
	printReport(out, rep)
	if o.strict && !rep.OK() {
		sess.Abandon()
		return fmt.Errorf("%s: %w", target, errEditsFailed)
	}

	diffText, err := stagedDiff(target, sess)
	if err != nil {
		sess.Abandon()
		return err
	}
	if o.dryRun || o.review {
		fmt.Fprint(out, diffText)
	}
	if o.dryRun {
		sess.Abandon()
		fmt.Fprintf(out, "dry run: %s not written\n", target)
		return nil
	}
	if o.review && diffText != "" {
		d, err := review.Run(ctx, fmt.Sprintf("%s (%d edits)", target, len(sess.Pending())), diffText)
		if err != nil {
			sess.Abandon()
			return err
		}
		if d != review.DecisionCommit {
			sess.Abandon()
			return errReviewDenied
		}
	}

	edits := len(sess.Pending())
	if err := sess.Commit(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s (%d edits)\n", target, edits)
	if !rep.OK() {
		return fmt.Errorf("%s: %w", target, errEditsFailed)
	}
	return nil
}

func stagedDiff(path string, sess *merge.Session) (string, error) {
	fd, ok := sess.Document().(*document.FileDocument)
	if !ok {
		return "", nil
	}
	return diffview.Unified(path, fd.Original(), fd.Text())
}

func printReport(w io.Writer, rep script.Report) {
	for _, o := range rep.Failed() {
		fmt.Fprintf(w, "edit %d (%s): %v\n", o.Index, o.Op, o.Err)
	}
}
