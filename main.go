// release-runner publishes one release of a Gradle project to GitHub.
//
// A release runs these steps in order, aborting on the first failure:
//
//	resolve the version from build.gradle
//	check that the version has not been tagged yet
//	run the tests
//	prepare the notes (leftover notes file, or synthesized from git and issues)
//	let the user edit the notes; empty notes abort
//	build the jar and check that it exists
//	tag and push, create the GitHub release, upload the jar
//	update the url and sha256 of the Homebrew formula (optional)
//	delete the notes file
//
// Synthesized notes list the issues closed since the previous tag, one line
// per issue in the form of:
//
//	- description (#<issue>)
//
// Issues are grouped by label. When an issue has several of the configured
// labels, the first one in the configured order wins; issues without any of
// them go to the last section ("Other resolved tickets" by default). Commits
// since the previous tag that do not close an issue ("Fix #", "Fixes #",
// "Closes #") follow under "Notes".
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/menghanl/release-runner/verify"
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		report(err)
		os.Exit(1)
	}
}

func report(err error) {
	if a, ok := verify.AsAbort(err); ok && a.Message != "" {
		fmt.Fprintln(os.Stderr, color.RedString("%s", a.Message))
	} else {
		fmt.Fprintln(os.Stderr, color.RedString("%s", err.Error()))
	}
	if !verbose {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	if st, ok := errors.Cause(err).(stackTracer); ok {
		for _, f := range st.StackTrace() {
			fmt.Fprintf(os.Stderr, "%+v\n", f)
		}
	}
}
