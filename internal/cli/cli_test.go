package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootRegistersCommands(t *testing.T) {
	cmd := newRootCmd()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"serve", "migrate", "import", "export"})
}

func TestImportRequiresFlags(t *testing.T) {
	_, err := run("import", "--file", "quizzes.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instructor")
}

func TestExportRejectsZeroQuiz(t *testing.T) {
	_, err := run("export", "--quiz", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positive quiz ID")
}

func TestServeFlags(t *testing.T) {
	serve, _, err := newRootCmd().Find([]string{"serve"})
	require.NoError(t, err)

	assert.NotNil(t, serve.Flags().Lookup("port"))
	migrate := serve.Flags().Lookup("migrate")
	require.NotNil(t, migrate)
	assert.Equal(t, "false", migrate.DefValue)
}
