package validate

import (
	"archive/zip"
	"fmt"
	"os"

	"github.com/urbanarchive/submiteval/dispatch"
	"github.com/urbanarchive/submiteval/rules"
)

func init() {
	register(map[int]dispatch.Validator{
		1: R1,
		2: R2,
	})
}

// R1: the submission path exists on disk.
func R1(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	if ctx.ArchivePath == "" {
		return dispatch.Error, nil, fmt.Errorf("no archive path configured")
	}
	if _, err := os.Stat(ctx.ArchivePath); err != nil {
		return dispatch.Fail, nil, nil
	}
	return dispatch.Pass, nil, nil
}

// R2: the container is a valid compressed archive.
func R2(ctx *dispatch.RunContext, r *rules.Rule) (dispatch.Outcome, any, error) {
	rd, err := zip.OpenReader(ctx.ArchivePath)
	if err != nil {
		return dispatch.Fail, nil, nil
	}
	rd.Close()
	return dispatch.Pass, nil, nil
}
