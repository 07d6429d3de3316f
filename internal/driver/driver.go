// Package driver implements the pom.xml merge pipeline.
//
// A merge runs six sequential stages:
//
//  1. extract the version of the ancestor, ours and theirs descriptors
//  2. if all three differ where it matters, rewrite ours to theirs'
//     version so the textual merge does not conflict on the version line
//  3. run the three-way merge
//  4. decode the merge output (two-pass, see charset.DecodeMergeOutput)
//  5. unless on the trunk branch (or forced by the keep flag), put ours'
//     version back into the merged text
//  6. write the result over ours and report the merge exit code
package driver

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/shinji-kodama/mergepom/internal/charset"
	"github.com/shinji-kodama/mergepom/internal/config"
	"github.com/shinji-kodama/mergepom/internal/model"
	"github.com/shinji-kodama/mergepom/internal/pom"
)

// Repository is the git surface the pipeline needs.
type Repository interface {
	MergeFile(ctx context.Context, ours, base, theirs string) (model.MergeResult, error)
	State(ctx context.Context, keepKey string) (model.RepoState, error)
}

// Paths are the three files git hands to a merge driver (%O %A %B).
type Paths struct {
	Ancestor string
	Ours     string
	Theirs   string
}

// Driver runs the merge pipeline.
type Driver struct {
	cfg    config.Config
	repo   Repository
	logger *zap.Logger
}

// New creates a Driver.
func New(cfg config.Config, repo Repository, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{cfg: cfg, repo: repo, logger: logger}
}

// ShouldPreRewrite reports whether ours must take theirs' version before
// the merge: all three versions present, ours != theirs and theirs !=
// ancestor. When theirs did not change the version there is nothing to
// conflict with, so ours is left alone.
func ShouldPreRewrite(v model.Versions) bool {
	return v.Ancestor.Present() && v.Ours.Present() && v.Theirs.Present() &&
		v.Ours != v.Theirs &&
		v.Theirs != v.Ancestor
}

// ShouldRestore reports whether ours' version is put back into the merged
// text: ours carried a version, and either the keep flag is set or the
// current branch is not the trunk. On release, feature and hotfix branches
// ours' version wins; on trunk the merged-in version is kept.
func ShouldRestore(v model.Versions, state model.RepoState, trunk string) bool {
	return v.Ours.Present() && (state.KeepTrunkVersion || state.Branch != trunk)
}

// Versions extracts the three versions. Extraction problems are logged
// and count as "no version".
func (d *Driver) Versions(p Paths) model.Versions {
	opts := d.cfg.PomOptions()
	return model.Versions{
		Ancestor: pom.Lookup(p.Ancestor, opts, d.logger),
		Ours:     pom.Lookup(p.Ours, opts, d.logger),
		Theirs:   pom.Lookup(p.Theirs, opts, d.logger),
	}
}

// Merge runs the whole pipeline and returns the merge utility's exit code.
// A non-nil error means the pipeline could not complete; the ours file may
// then still hold its pre-merge rewrite.
func (d *Driver) Merge(ctx context.Context, p Paths) (int, error) {
	versions := d.Versions(p)
	d.logger.Debug("extracted versions",
		zap.String("ancestor", versions.Ancestor.Display()),
		zap.String("ours", versions.Ours.Display()),
		zap.String("theirs", versions.Theirs.Display()))

	if ShouldPreRewrite(versions) {
		if err := d.rewriteOurs(p.Ours, versions); err != nil {
			return int(model.ExitGeneralError), err
		}
	}

	result, err := d.repo.MergeFile(ctx, p.Ours, p.Ancestor, p.Theirs)
	if err != nil {
		return int(model.ExitGeneralError), err
	}
	d.logger.Debug("merge finished",
		zap.Int("exitCode", result.ExitCode),
		zap.Bool("conflicts", result.HasConflicts()))

	text, enc, err := charset.DecodeMergeOutput(result.Output, d.cfg.FallbackEncoding)
	if err != nil {
		return int(model.ExitGeneralError), err
	}

	state, err := d.repo.State(ctx, d.cfg.KeepTrunkVersionKey())
	if err != nil {
		return int(model.ExitGeneralError), err
	}

	if ShouldRestore(versions, state, d.cfg.TrunkBranch) {
		text = d.restoreOurs(text, versions, state.Branch)
	}

	if err := writeContent(p.Ours, model.FileContent{Text: text, Encoding: enc}); err != nil {
		return int(model.ExitGeneralError), err
	}
	return result.ExitCode, nil
}

// rewriteOurs replaces ours' version with theirs' in the ours file, using
// the encoding the file declares.
func (d *Driver) rewriteOurs(path string, v model.Versions) error {
	content, err := readContent(path, d.cfg.DefaultEncoding)
	if err != nil {
		return err
	}

	d.logger.Debug("rewriting ours before merge",
		zap.String("from", v.Ours.String()),
		zap.String("to", v.Theirs.String()),
		zap.String("encoding", content.Encoding))

	content.Text = pom.ReplaceVersion(v.Ours, v.Theirs, content.Text, d.cfg.VersionElement)
	return writeContent(path, content)
}

// restoreOurs puts ours' version back in place of theirs' in the merged
// text. Without a version on theirs' side there is no key to replace.
func (d *Driver) restoreOurs(text string, v model.Versions, branch string) string {
	if !v.Theirs.Present() {
		d.logger.Warn("theirs carries no version, keeping merged version",
			zap.String("branch", branch),
			zap.String("ours", v.Ours.String()))
		return text
	}

	d.logger.Info(fmt.Sprintf("Merging pom version %s into %s. Keeping version %s",
		v.Theirs, branch, v.Ours))
	return pom.ReplaceVersion(v.Theirs, v.Ours, text, d.cfg.VersionElement)
}

// readContent reads and decodes a descriptor, detecting its encoding from
// the declaration on the first line.
func readContent(path, defaultEnc string) (model.FileContent, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.FileContent{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	enc := charset.Declared(charset.FirstLine(raw), defaultEnc)
	text, err := charset.Decode(raw, enc)
	if err != nil {
		return model.FileContent{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return model.FileContent{Text: text, Encoding: enc}, nil
}

// writeContent encodes and writes the whole file. An existing file keeps
// its permissions.
func writeContent(path string, content model.FileContent) error {
	data, err := charset.Encode(content.Text, content.Encoding)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
