package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billing "github.com/felixgeelhaar/arena/internal/billing/domain"
	"github.com/felixgeelhaar/arena/internal/shared/infrastructure/eventbus"
)

func TestFormatLimit(t *testing.T) {
	assert.Equal(t, "unlimited", FormatLimit(billing.Unlimited))
	assert.Equal(t, "25", FormatLimit(25))
	assert.Equal(t, "0", FormatLimit(0))
}

func TestParseID(t *testing.T) {
	id := uuid.New()
	got, err := ParseID("team", id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseID("team", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid team "nope"`)
}

func TestRequireApp(t *testing.T) {
	prev := GetApp()
	t.Cleanup(func() { SetApp(prev) })

	SetApp(nil)
	_, err := RequireApp()
	assert.ErrorIs(t, err, ErrNotInitialized)

	SetApp(&App{})
	a, err := RequireApp()
	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestReportPropagation(t *testing.T) {
	var stderr bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetErr(&stderr)
	cmd.SetContext(context.Background())

	ReportPropagation(cmd, nil)
	assert.Empty(t, stderr.String())

	ReportPropagation(cmd, &eventbus.PublishError{Failures: []eventbus.HandlerFailure{
		{Handler: "limit-propagator", EventType: "billing.subscription.plan_changed", Err: errors.New("db down")},
	}})
	assert.Contains(t, stderr.String(), "warning: limit-propagator failed: db down")

	stderr.Reset()
	ReportPropagation(cmd, errors.New("boom"))
	assert.Equal(t, "warning: boom\n", stderr.String())
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionJSON = true
	t.Cleanup(func() { versionJSON = false })

	require.NoError(t, versionCmd.RunE(versionCmd, nil))

	var b BuildInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &b))
	assert.Equal(t, Version, b.Version)
	assert.NotEmpty(t, b.GoVersion)
}
