package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dixit-research/dixit/internal/api"
	"github.com/dixit-research/dixit/internal/config"
	"github.com/dixit-research/dixit/internal/tui"
)

// testEnv captures everything a command writes or hands off
type testEnv struct {
	deps    *Dependencies
	client  *api.MockClient
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	copied  []string
	chatted []tui.Options
}

// newTestEnv installs fake dependencies for the duration of the test and
// points the config dir at a temporary directory
func newTestEnv(t *testing.T, client *api.MockClient) *testEnv {
	t.Helper()

	t.Setenv("DIXIT_CONFIG_DIR", t.TempDir())

	env := &testEnv{
		client: client,
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	env.deps = &Dependencies{
		NewClient: func(cfg config.Config) (api.BackendClient, error) {
			return client, nil
		},
		RunChat: func(opts tui.Options) error {
			env.chatted = append(env.chatted, opts)
			return nil
		},
		CopyToClipboard: func(text string) error {
			env.copied = append(env.copied, text)
			return nil
		},
		Stdin:       strings.NewReader(""),
		Stdout:      env.stdout,
		Stderr:      env.stderr,
		StdoutIsTTY: func() bool { return false },
		StdinIsPipe: func() bool { return false },
	}

	oldDeps, oldFlags := deps, flags
	deps = env.deps
	flags = globalFlags{}
	t.Cleanup(func() {
		deps = oldDeps
		flags = oldFlags
	})

	return env
}
