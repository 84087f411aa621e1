package out

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	readerout "lectern/internal/modules/reader/port/out"
)

// OSExternalLauncher hands a downloaded document to a PDF viewer: the
// configured opener command when set, otherwise the desktop default.
type OSExternalLauncher struct {
	opener []string
}

// NewOSExternalLauncher takes an optional opener command line such as
// "zathura --fork"; the document path is appended as the last argument.
func NewOSExternalLauncher(opener string) readerout.ExternalLauncher {
	return &OSExternalLauncher{opener: strings.Fields(opener)}
}

func (l *OSExternalLauncher) Open(_ context.Context, path string) error {
	argv, err := l.command(path)
	if err != nil {
		return err
	}
	// Not waited on; the viewer outlives this process.
	if err := exec.Command(argv[0], argv[1:]...).Start(); err != nil {
		return fmt.Errorf("launch document viewer %q: %w", argv[0], err)
	}
	return nil
}

func (l *OSExternalLauncher) command(path string) ([]string, error) {
	if len(l.opener) > 0 {
		return append(append([]string{}, l.opener...), path), nil
	}
	switch runtime.GOOS {
	case "darwin":
		return []string{"open", path}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return []string{"xdg-open", path}, nil
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler", path}, nil
	}
	return nil, fmt.Errorf("opening documents externally is not supported on %s; set reader.opener", runtime.GOOS)
}
