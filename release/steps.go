package release

import (
	"context"

	"github.com/menghanl/release-runner/verify"
)

func (r *Runner) resolveVersion(ctx context.Context, st *State) error {
	version, err := verify.Value(r.readVersion()).OrElse(verify.EchoAndDie("No version!?"))
	if err != nil {
		return err
	}
	st.Version = version
	st.Tag = r.opts.TagPrefix + version
	r.log.Infof("Version %s (tag %s)", st.Version, st.Tag)
	return nil
}

func (r *Runner) readVersion() (string, error) {
	data, err := r.readFile(r.opts.BuildFile)
	if err != nil {
		return "", err
	}
	return ExtractVersion(data, r.opts.VersionPattern)
}

// checkVersionIsNew is the one inverted guard: it aborts when the check is
// true, using Then where every other step uses OrElse.
func (r *Runner) checkVersionIsNew(ctx context.Context, st *State) error {
	return verify.Truth(r.repo.TagExists(ctx, st.Tag)).
		Then(verify.EchoAndDie("Version `%s` already exists!", st.Version))
}

func (r *Runner) runTests(ctx context.Context, st *State) error {
	_, err := verify.Run(r.builder.Run(ctx, r.opts.TestTask)).OrElse(verify.Die())
	return err
}

// prepareNotes prefers notes left over from an earlier aborted run and only
// synthesizes new ones when there are none.
func (r *Runner) prepareNotes(ctx context.Context, st *State) error {
	st.Notes = verify.Value(r.notesFile.Contents()).ValueElse(func(cause error) string {
		r.log.Debugf("No leftover notes in %s: %v", r.notesFile.Path(), cause)
		contents, err := r.notes.BuildDefault(ctx)
		if err != nil {
			r.log.Warnf("Unable to synthesize release notes: %v", err)
			return ""
		}
		return contents
	})
	if st.Notes == "" {
		r.log.Warnf("No suggested release notes; write them in the editor")
	}
	return nil
}

func (r *Runner) reviewNotes(ctx context.Context, st *State) error {
	if err := r.notesFile.Delete(); err != nil {
		return &verify.Abort{Err: err}
	}
	if _, err := verify.Run(r.notesFile.Write(st.Notes)).OrElse(verify.Die()); err != nil {
		return err
	}
	if _, err := verify.Run(r.editor.Edit(ctx, r.notesFile.Path())).OrElse(verify.Die()); err != nil {
		return err
	}
	notes, err := verify.Value(r.notesFile.Contents()).OrElse(verify.EchoAndDie("Aborted due to empty message"))
	if err != nil {
		return err
	}
	st.Notes = notes
	return nil
}

func (r *Runner) build(ctx context.Context, st *State) error {
	_, err := verify.Run(r.builder.Run(ctx, r.opts.PackageTask)).OrElse(verify.Die())
	return err
}

func (r *Runner) checkArtifact(ctx context.Context, st *State) error {
	path := r.opts.ArtifactPath(st.Version)
	_, err := verify.Truth(r.isFile(path)).OrElse(verify.EchoAndDie("Failed to build %s", path))
	if err != nil {
		return err
	}
	st.Artifact = path
	return nil
}

func (r *Runner) isFile(path string) (bool, error) {
	info, err := r.stat(path)
	if err != nil {
		return false, nil
	}
	return info.Mode().IsRegular(), nil
}

func (r *Runner) tagAndPush(ctx context.Context, st *State) error {
	r.log.Infof("Uploading to Github...")
	if _, err := verify.Run(r.repo.CreateTag(ctx, st.Tag)).OrElse(verify.Die()); err != nil {
		return err
	}
	_, err := verify.Run(r.repo.PushTag(ctx, r.opts.Remote, st.Tag)).OrElse(verify.Die())
	return err
}

func (r *Runner) publishRelease(ctx context.Context, st *State) error {
	rel, err := verify.Value(r.publisher.CreateRelease(ctx, st.Tag, st.Notes)).OrElse(verify.Die())
	if err != nil {
		return err
	}
	st.Release = rel
	if rel.HTMLURL != "" {
		r.log.Infof("Created release %s", rel.HTMLURL)
	}
	return nil
}

func (r *Runner) uploadArtifact(ctx context.Context, st *State) error {
	r.log.Infof("Uploading %s", st.Artifact)
	_, err := verify.Run(r.publisher.UploadAsset(ctx, st.Release, st.Artifact, r.opts.ContentType)).OrElse(verify.Die())
	return err
}

func (r *Runner) updateFormula(ctx context.Context, st *State) error {
	if r.formula == nil {
		r.log.Infof("Formula update disabled")
		return nil
	}
	_, err := verify.Run(r.formula.Update(ctx, st.Version, st.Artifact)).OrElse(verify.Die())
	return err
}

func (r *Runner) cleanup(ctx context.Context, st *State) error {
	if err := r.notesFile.Delete(); err != nil {
		r.log.Warnf("%v", err)
	}
	r.log.Successf("Done! Published %s", st.Version)
	return nil
}
